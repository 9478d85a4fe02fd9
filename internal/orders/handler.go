package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/validation"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	var order *domain.Order
	err := validation.Decode(r.Body, &in)
	if errors.Is(err, validation.ErrMalformedBody) {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err == nil {
		order, err = h.svc.PlaceOrder(r.Context(), in)
	}
	if err != nil {
		var verr *domain.ValidationError
		var nf *domain.ProductNotFoundError
		switch {
		case errors.As(err, &verr):
			h.logger.Info("order rejected", "error", err)
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		case errors.As(err, &nf):
			h.logger.Info("order rejected", "error", err, "product_id", nf.ProductID)
			h.writeError(w, http.StatusNotFound, nf.Error())
		case errors.Is(err, domain.ErrStoreUnavailable):
			h.logger.Error("failed to place order", "error", err)
			h.writeError(w, http.StatusServiceUnavailable, "store unavailable")
		default:
			h.logger.Error("failed to place order", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			h.writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "Order not found: "+id)
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
