package models

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a farmer's listing. Quantity is the remaining sellable stock
// and is only ever decremented inside a successful order placement scope;
// it never goes below zero. Images holds a JSON-encoded list of opaque URLs
// handed back by the object storage collaborator.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:text;primaryKey"`
	FarmerID     uuid.UUID           `gorm:"column:farmer_id;type:text;not null;index"`
	Farmer       *User               `gorm:"foreignKey:FarmerID;constraint:OnDelete:CASCADE"`
	Name         string              `gorm:"column:name;not null"`
	Category     string              `gorm:"column:category"`
	Quantity     float64             `gorm:"column:quantity;not null"`
	Unit         string              `gorm:"column:unit"`
	PricePerUnit decimal.Decimal     `gorm:"column:price_per_unit;type:numeric;not null"`
	MinOrderQty  float64             `gorm:"column:min_order_qty;not null;default:0"`
	HarvestDate  *string             `gorm:"column:harvest_date"`
	QualityGrade *string             `gorm:"column:quality_grade"`
	IsOrganic    bool                `gorm:"column:is_organic;not null;default:false"`
	Images       string              `gorm:"column:images;type:text"`
	Description  *string             `gorm:"column:description"`
	Status       enums.ProductStatus `gorm:"column:status;type:text;not null;default:ACTIVE"`
	Rating       float64             `gorm:"column:rating;not null;default:0"`
	TotalOrders  int                 `gorm:"column:total_orders;not null;default:0"`
	Views        int                 `gorm:"column:views;not null;default:0"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
