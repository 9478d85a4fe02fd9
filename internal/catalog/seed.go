package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

func unsplash(photo string) string {
	return "https://images.unsplash.com/" + photo + "?q=80&w=1600&auto=format&fit=crop"
}

func describe(s string) *string { return &s }

// SeedProducts returns the starter catalog inserted when the product
// collection is first observed empty.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			Title:       "Smiley Classic Hoodie",
			Description: describe("Cozy fleece hoodie with the iconic Smiley front print."),
			Price:       decimal.NewFromInt(59),
			Category:    "hoodies",
			Images:      []string{unsplash("photo-1548883354-7622d03acae1")},
			Sizes:       append([]string(nil), domain.DefaultSizes...),
			InStock:     true,
		},
		{
			Title:       "Smiley Minimal Tee",
			Description: describe("Soft cotton t‑shirt with a subtle embroidered smile."),
			Price:       decimal.NewFromInt(24),
			Category:    "t-shirts",
			Images:      []string{unsplash("photo-1512436991641-6745cdb1723f")},
			Sizes:       append([]string(nil), domain.DefaultSizes...),
			InStock:     true,
		},
		{
			Title:       "Smiley Oversized Hoodie",
			Description: describe("Premium heavyweight hoodie, oversized fit."),
			Price:       decimal.NewFromInt(72),
			Category:    "hoodies",
			Images:      []string{unsplash("photo-1544441893-675973e31985")},
			Sizes:       append([]string(nil), domain.DefaultSizes...),
			InStock:     true,
		},
		{
			Title:       "Smiley Retro Tee",
			Description: describe("90s inspired graphic tee with retro smile."),
			Price:       decimal.NewFromInt(29),
			Category:    "t-shirts",
			Images:      []string{unsplash("photo-1503342217505-b0a15cf70489")},
			Sizes:       append([]string(nil), domain.DefaultSizes...),
			InStock:     true,
		},
	}
}
