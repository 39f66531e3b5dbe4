package models

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one line item of a placement batch. UnitPrice is copied from the
// product at order time and never changes retroactively; TotalAmount equals
// UnitPrice * Quantity at creation.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:text;primaryKey"`
	OrderNumber          string              `gorm:"column:order_number;not null;uniqueIndex"`
	FarmerID             uuid.UUID           `gorm:"column:farmer_id;type:text;not null;index"`
	RetailerID           uuid.UUID           `gorm:"column:retailer_id;type:text;not null;index"`
	DeliveryPartnerID    *uuid.UUID          `gorm:"column:delivery_partner_id;type:text"`
	ProductID            uuid.UUID           `gorm:"column:product_id;type:text;not null;index"`
	Product              *Product            `gorm:"foreignKey:ProductID"`
	Quantity             float64             `gorm:"column:quantity;not null"`
	UnitPrice            decimal.Decimal     `gorm:"column:unit_price;type:numeric;not null"`
	TotalAmount          decimal.Decimal     `gorm:"column:total_amount;type:numeric;not null"`
	PlatformCommission   decimal.Decimal     `gorm:"column:platform_commission;type:numeric;not null;default:0"`
	DeliveryFee          decimal.Decimal     `gorm:"column:delivery_fee;type:numeric;not null;default:0"`
	NetAmountToFarmer    decimal.Decimal     `gorm:"column:net_amount_to_farmer;type:numeric;not null;default:0"`
	Status               enums.OrderStatus   `gorm:"column:status;type:text;not null;default:PENDING"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:PENDING"`
	PaymentMethod        string              `gorm:"column:payment_method"`
	PickupAddress        *string             `gorm:"column:pickup_address"`
	DeliveryAddress      string              `gorm:"column:delivery_address;type:text"`
	Distance             *float64            `gorm:"column:distance"`
	EstimatedDelivery    *time.Time          `gorm:"column:estimated_delivery"`
	ActualDelivery       *time.Time          `gorm:"column:actual_delivery"`
	RejectionReason      *string             `gorm:"column:rejection_reason"`
	CancellationReason   *string             `gorm:"column:cancellation_reason"`
	DeliveryInstructions *string             `gorm:"column:delivery_instructions"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
