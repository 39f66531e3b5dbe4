package models

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
)

// OrderTracking is an append-only trail of fulfillment status changes.
type OrderTracking struct {
	ID        uuid.UUID         `gorm:"column:id;type:text;primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:text;not null;index"`
	Order     *Order            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Note      *string           `gorm:"column:note"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoCreateTime"`
}

// TableName keeps the historical singular-free name.
func (OrderTracking) TableName() string {
	return "order_tracking"
}
