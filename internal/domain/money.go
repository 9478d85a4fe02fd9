package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, matching what storefront clients send.
	decimal.MarshalJSONWithoutQuotes = true
}

// RoundMoney rounds an amount to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
