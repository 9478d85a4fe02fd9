package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderReceivedEvent struct {
	OrderID       string          `json:"order_id"`
	CustomerEmail string          `json:"customer_email"`
	Items         []LineItem      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Timestamp     time.Time       `json:"timestamp"`
}
