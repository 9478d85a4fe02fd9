package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider.
// It returns an http.Handler for the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(newResource(serviceName, serviceVersion)),
	)

	otel.SetMeterProvider(mp)

	return promhttp.Handler(), mp.Shutdown, nil
}

// OrderMetrics records order placement outcomes.
type OrderMetrics struct {
	placed   otelmetric.Int64Counter
	rejected otelmetric.Int64Counter
	value    otelmetric.Float64Histogram
}

// NewOrderMetrics registers the order instruments on the global MeterProvider.
func NewOrderMetrics() (*OrderMetrics, error) {
	meter := otel.Meter("storefront/orders")

	placed, err := meter.Int64Counter("storefront_orders_placed",
		otelmetric.WithDescription("Orders persisted with status received"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("storefront_orders_rejected",
		otelmetric.WithDescription("Orders refused before persistence, by reason"),
	)
	if err != nil {
		return nil, err
	}

	value, err := meter.Float64Histogram("storefront_order_value",
		otelmetric.WithDescription("Order totals at placement time"),
		otelmetric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{placed: placed, rejected: rejected, value: value}, nil
}

// RecordPlaced counts a persisted order and its total. Safe on a nil receiver.
func (m *OrderMetrics) RecordPlaced(ctx context.Context, total float64) {
	if m == nil {
		return
	}
	m.placed.Add(ctx, 1)
	m.value.Record(ctx, total)
}

func (m *OrderMetrics) RecordRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("reason", reason)))
}
