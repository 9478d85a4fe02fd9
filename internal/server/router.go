// Package server assembles the storefront HTTP surface.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/storefront/internal/catalog"
	"github.com/joao-fontenele/storefront/internal/health"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/telemetry"
)

type Deps struct {
	Products    *catalog.Handler
	Orders      *orders.Handler
	Readiness   *health.Handler
	Diagnostics *health.Diagnostics
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler

	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires every route behind request id, recovery, CORS, request
// logging and tracing middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(telemetry.RouteTag)

	r.Get("/", health.RootHandler)
	r.Get("/test", d.Diagnostics.ServeHTTP)
	r.Get("/healthz", health.LivenessHandler)
	r.Get("/readyz", d.Readiness.ServeHTTP)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", d.Products.Routes)
		r.Post("/order", d.Orders.HandleCreate)
		r.Get("/orders/{id}", d.Orders.HandleGet)
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
