package products

import (
	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest is a farmer's new listing. PricePerUnit travels as a decimal
// string so no float rounding sneaks into money values.
type CreateRequest struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category,omitempty"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit,omitempty"`
	PricePerUnit string  `json:"price_per_unit" validate:"required"`
	MinOrderQty  float64 `json:"min_order_qty,omitempty"`
	HarvestDate  *string `json:"harvest_date,omitempty"`
	QualityGrade *string `json:"quality_grade,omitempty"`
	IsOrganic    bool    `json:"is_organic,omitempty"`
	Description  *string `json:"description,omitempty"`
}

// SearchFilter narrows the public catalogue. Zero values mean "no filter".
type SearchFilter struct {
	Query    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
}

// View is the outward shape of a listing.
type View struct {
	ID           uuid.UUID           `json:"id"`
	FarmerID     uuid.UUID           `json:"farmer_id"`
	Name         string              `json:"name"`
	Category     string              `json:"category,omitempty"`
	Quantity     float64             `json:"quantity"`
	Unit         string              `json:"unit,omitempty"`
	PricePerUnit decimal.Decimal     `json:"price_per_unit"`
	MinOrderQty  float64             `json:"min_order_qty"`
	IsOrganic    bool                `json:"is_organic"`
	Images       []string            `json:"images"`
	Description  *string             `json:"description,omitempty"`
	Status       enums.ProductStatus `json:"status"`
}

// SearchHit is a catalogue row joined with its farmer's public details.
type SearchHit struct {
	View
	FarmerName string `json:"farmer_name"`
	District   string `json:"district,omitempty"`
	State      string `json:"state,omitempty"`
}

func viewOf(product *models.Product, images []string) View {
	return View{
		ID:           product.ID,
		FarmerID:     product.FarmerID,
		Name:         product.Name,
		Category:     product.Category,
		Quantity:     product.Quantity,
		Unit:         product.Unit,
		PricePerUnit: product.PricePerUnit,
		MinOrderQty:  product.MinOrderQty,
		IsOrganic:    product.IsOrganic,
		Images:       images,
		Description:  product.Description,
		Status:       product.Status,
	}
}
