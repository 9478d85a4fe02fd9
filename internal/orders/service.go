// Package orders turns a cart into a priced, persisted order.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/telemetry"
	"github.com/joao-fontenele/storefront/internal/validation"
)

// Collection is the store collection holding orders.
const Collection = "order"

var tracer = otel.Tracer("orders")

// ProductLookup resolves a product by id, returning nil when none exists.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Publisher announces placed orders. messaging.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service places and looks up orders.
type Service struct {
	store     store.Store
	products  ProductLookup
	publisher Publisher
	metrics   *telemetry.OrderMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional collaborators of a Service.
type Option func(*Service)

// WithPublisher announces every stored order as an order.received event.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records placed and rejected orders.
func WithMetrics(m *telemetry.OrderMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service that prices carts through products.
func NewService(s store.Store, products ProductLookup, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:    s,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// PlaceOrder validates the cart, prices every item from the catalog in input
// order and persists the result with status received. The first product that
// cannot be resolved aborts placement with a *domain.ProductNotFoundError and
// nothing is written. Every call creates a new order.
func (s *Service) PlaceOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.place",
		trace.WithAttributes(attribute.Int("order.item_count", len(in.Items))),
	)
	defer span.End()

	if err := validation.Struct(in); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		s.metrics.RecordRejected(ctx, "validation")
		return nil, err
	}

	items := make([]domain.LineItem, 0, len(in.Items))
	total := decimal.Zero
	for _, item := range in.Items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			return nil, s.fail(ctx, span, "store_error", fmt.Errorf("resolve product %s: %w", item.ProductID, err))
		}
		if product == nil {
			return nil, s.fail(ctx, span, "product_not_found", &domain.ProductNotFoundError{ProductID: item.ProductID})
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, domain.LineItem{
			ProductID: item.ProductID,
			Title:     product.Title,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		total = total.Add(lineTotal)
	}

	order := domain.Order{
		Items:     items,
		Customer:  in.Customer,
		Total:     domain.RoundMoney(total),
		Status:    domain.OrderStatusReceived,
		CreatedAt: s.now().UTC(),
	}

	id, err := s.store.Create(ctx, Collection, order)
	if err != nil {
		return nil, s.fail(ctx, span, "store_error", fmt.Errorf("create order: %w", err))
	}

	saved, err := s.Get(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, span, "store_error", err)
	}
	if saved == nil {
		return nil, s.fail(ctx, span, "store_error", fmt.Errorf("order %s missing after insert: %w", id, domain.ErrStoreUnavailable))
	}

	span.SetAttributes(attribute.String("order.id", saved.ID))
	s.metrics.RecordPlaced(ctx, saved.Total.InexactFloat64())
	s.publish(ctx, saved)

	s.logger.Info("order placed",
		"order_id", saved.ID,
		"items", len(saved.Items),
		"total", saved.Total.StringFixed(2),
	)
	return saved, nil
}

// Get returns the order with the given id, or nil if none exists.
func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	rec, err := s.store.FindOne(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	var order domain.Order
	if err := rec.Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", rec.ID, err)
	}
	order.ID = rec.ID
	return &order, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, reason string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.RecordRejected(ctx, reason)
	return err
}

// publish announces the order. The order is already stored, so a failed
// publish is only logged.
func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderReceivedEvent{
		OrderID:       order.ID,
		CustomerEmail: order.Customer.Email,
		Items:         order.Items,
		Total:         order.Total,
		Timestamp:     order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order received event", "error", err, "order_id", order.ID)
	}
}
