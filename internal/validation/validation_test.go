package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
)

func validOrder() domain.OrderInput {
	return domain.OrderInput{
		Items: []domain.CartItem{{ProductID: "p1", Size: "M", Quantity: 2}},
		Customer: domain.Customer{
			Name:    "Ada",
			Email:   "ada@example.com",
			Address: "1 Main St",
		},
	}
}

func TestStruct_OrderInput(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *domain.OrderInput)
		wantFields map[string]string
	}{
		{
			name:   "valid",
			mutate: func(in *domain.OrderInput) {},
		},
		{
			name:   "quantity above ten",
			mutate: func(in *domain.OrderInput) { in.Items[0].Quantity = 11 },
			wantFields: map[string]string{
				"items[0].quantity": "must be at most 10",
			},
		},
		{
			name:   "quantity zero",
			mutate: func(in *domain.OrderInput) { in.Items[0].Quantity = 0 },
			wantFields: map[string]string{
				"items[0].quantity": "is required",
			},
		},
		{
			name:   "negative quantity",
			mutate: func(in *domain.OrderInput) { in.Items[0].Quantity = -1 },
			wantFields: map[string]string{
				"items[0].quantity": "must be at least 1",
			},
		},
		{
			name:   "empty cart",
			mutate: func(in *domain.OrderInput) { in.Items = []domain.CartItem{} },
			wantFields: map[string]string{
				"items": "must contain at least 1 item(s)",
			},
		},
		{
			name:   "missing customer fields",
			mutate: func(in *domain.OrderInput) { in.Customer = domain.Customer{Name: "Ada"} },
			wantFields: map[string]string{
				"customer.email":   "is required",
				"customer.address": "is required",
			},
		},
		{
			name:   "missing product id",
			mutate: func(in *domain.OrderInput) { in.Items[0].ProductID = "" },
			wantFields: map[string]string{
				"items[0].product_id": "is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validOrder()
			tt.mutate(&in)

			err := Struct(in)
			if tt.wantFields == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFields, verr.Fields)
		})
	}
}

func TestStruct_ProductInput(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	t.Run("zero price is allowed", func(t *testing.T) {
		err := Struct(domain.ProductInput{Title: "Tee", Category: "t-shirts", Price: price("0")})
		require.NoError(t, err)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		err := Struct(domain.ProductInput{Title: "Tee", Category: "t-shirts", Price: price("-0.01")})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must be greater than or equal to 0", verr.Fields["price"])
	})

	t.Run("missing price and title", func(t *testing.T) {
		err := Struct(domain.ProductInput{Category: "t-shirts"})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "price")
		assert.Contains(t, verr.Fields, "title")
	})
}
