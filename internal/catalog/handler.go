package catalog

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

// Routes mounts the product endpoints under the caller's prefix.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	products, err := h.svc.List(r.Context(), category)
	if err != nil {
		h.logger.Error("failed to list products", "error", err, "category", category)
		h.writeServiceError(w, err)
		return
	}

	h.logger.Info("products listed", "count", len(products), "category", category)
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeServiceError(w, err)
		return
	}

	if product == nil {
		h.writeError(w, http.StatusNotFound, (&domain.ProductNotFoundError{ProductID: id}).Error())
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := validation.Decode(r.Body, &in); err != nil {
		h.logger.Info("product rejected", "error", err)
		if errors.Is(err, validation.ErrMalformedBody) {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		h.writeServiceError(w, err)
		return
	}

	product, err := h.svc.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.logger.Info("product rejected", "error", err)
		} else {
			h.logger.Error("failed to create product", "error", err)
		}
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
