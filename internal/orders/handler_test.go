package orders

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/api/order", h.HandleCreate)
	r.Get("/api/orders/{id}", h.HandleGet)
	return r
}

func cartJSON(productID string, quantity int) string {
	return fmt.Sprintf(`{
		"items": [{"product_id": %q, "size": "M", "quantity": %d}],
		"customer": {"name": "Ada", "email": "ada@example.com", "address": "1 Smile St"}
	}`, productID, quantity)
}

func TestHandler_CreateOrder(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)
	hoodie := f.ids["Smiley Classic Hoodie"]

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader(cartJSON(hoodie, 2))))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "received", body["status"])
	assert.Equal(t, float64(118), body["total"])
	assert.Equal(t, map[string]any{"name": "Ada", "email": "ada@example.com", "address": "1 Smile St"}, body["customer"])

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{
		"product_id": hoodie,
		"title":      "Smiley Classic Hoodie",
		"size":       "M",
		"quantity":   float64(2),
		"unit_price": float64(59),
		"line_total": float64(118),
	}, items[0])
}

func TestHandler_CreateOrderErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantField  string
	}{
		{
			name:       "unknown product",
			body:       cartJSON("does-not-exist", 1),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Product not found: does-not-exist"}`,
		},
		{
			name:       "quantity out of range",
			body:       cartJSON("does-not-exist", 11),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"validation failed","fields":{"items[0].quantity":"must be at most 10"}}`,
		},
		{
			name:       "missing customer",
			body:       `{"items":[{"product_id":"p1","size":"M","quantity":1}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: `{"error":"validation failed","fields":{` +
				`"customer.address":"is required","customer.email":"is required","customer.name":"is required"}}`,
		},
		{
			name:       "malformed json",
			body:       `{"items": [`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "quantity is a string",
			body:       `{"items":[{"product_id":"p1","size":"M","quantity":"two"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "quantity",
		},
		{
			name:       "quantity is fractional",
			body:       `{"items":[{"product_id":"p1","size":"M","quantity":2.5}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantField:  "quantity",
		},
		{
			name:       "items is not a list",
			body:       `{"items":{"product_id":"p1"}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"error":"validation failed","fields":{"items":"is invalid"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			router := newTestRouter(f.svc)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantField != "" {
				var resp struct {
					Error  string            `json:"error"`
					Fields map[string]string `json:"fields"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "validation failed", resp.Error)
				require.Len(t, resp.Fields, 1)
				for field, reason := range resp.Fields {
					assert.True(t, strings.HasSuffix(field, tt.wantField), "field %q", field)
					assert.Equal(t, "is invalid", reason)
				}
			}
			assert.Zero(t, f.orderCount(t))
		})
	}
}

func TestHandler_GetOrder(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f.svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order",
		strings.NewReader(cartJSON(f.ids["Smiley Minimal Tee"], 3))))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := rec.Body.String()

	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(created), &body))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/"+body.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, created, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found: unknown"}`, rec.Body.String())
}
