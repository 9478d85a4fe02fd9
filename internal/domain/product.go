package domain

import "github.com/shopspring/decimal"

// DefaultSizes is applied to products created without an explicit size list.
var DefaultSizes = []string{"S", "M", "L", "XL"}

type Product struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Sizes       []string        `json:"sizes"`
	InStock     bool            `json:"in_stock"`
}

// ProductInput is the payload accepted by the catalog when creating a product.
type ProductInput struct {
	Title       string           `json:"title" validate:"required"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Category    string           `json:"category" validate:"required"`
	Images      []string         `json:"images"`
	Sizes       []string         `json:"sizes"`
	InStock     *bool            `json:"in_stock"`
}

// Product applies the catalog defaults and returns the record to persist.
func (in ProductInput) Product() Product {
	p := Product{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Images:      in.Images,
		Sizes:       in.Sizes,
		InStock:     true,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = append([]string(nil), DefaultSizes...)
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	return p
}
