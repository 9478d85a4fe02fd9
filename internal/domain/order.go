package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

// Orders are created as received; no further transitions exist.
const OrderStatusReceived OrderStatus = "received"

type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
}

type Customer struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// OrderInput is a cart submitted for placement.
type OrderInput struct {
	Items    []CartItem `json:"items" validate:"required,min=1,dive"`
	Customer Customer   `json:"customer"`
}

// LineItem is a cart item resolved against the catalog. Title and UnitPrice
// are copies taken when the order was placed.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID        string          `json:"id,omitempty"`
	Items     []LineItem      `json:"items"`
	Customer  Customer        `json:"customer"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
