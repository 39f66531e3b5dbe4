package orders

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one requested line of a placement batch.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"gt=0"`
}

// PlaceOrderRequest is a retailer's batch. The batch is all-or-nothing; a
// failure on any line discards every line.
type PlaceOrderRequest struct {
	Items           []OrderItem `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string      `json:"delivery_address" validate:"required"`
	ContactNumber   string      `json:"contact_number,omitempty"`
	PaymentMethod   string      `json:"payment_method" validate:"required"`
}

// PlacedOrder summarizes one created order line.
type PlacedOrder struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"order_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    float64         `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// UpdateStatusRequest moves an order through fulfillment.
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note,omitempty"`
}

// View is one order row joined with its product name.
type View struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	ProductID   uuid.UUID           `json:"product_id"`
	ProductName string              `json:"product_name,omitempty"`
	FarmerID    uuid.UUID           `json:"farmer_id"`
	RetailerID  uuid.UUID           `json:"retailer_id"`
	Quantity    float64             `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Status      enums.OrderStatus   `json:"status"`
	Payment     enums.PaymentStatus `json:"payment_status"`
	PlacedAt    time.Time           `json:"placed_at"`
}
