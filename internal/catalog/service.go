// Package catalog serves read access to products and creation of new ones.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
	"github.com/joao-fontenele/storefront/internal/validation"
)

// Collection is the store collection holding products.
const Collection = "product"

type Service struct {
	store  store.Store
	logger *slog.Logger
	seed   []domain.Product

	seeding singleflight.Group
	seeded  atomic.Bool
}

func NewService(s store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		logger: logger,
		seed:   SeedProducts(),
	}
}

// EnsureSeeded inserts the seed set if the product collection is empty. It
// runs at most once successfully per Service; concurrent callers share one
// attempt and a failed attempt is retried by the next caller.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	if s.seeded.Load() {
		return nil
	}

	// The attempt is shared, so one caller giving up must not fail the others.
	ctx = context.WithoutCancel(ctx)
	_, err, _ := s.seeding.Do("seed", func() (any, error) {
		if s.seeded.Load() {
			return nil, nil
		}

		n, err := s.store.Count(ctx, Collection)
		if err != nil {
			return nil, fmt.Errorf("count products: %w", err)
		}

		if n == 0 {
			docs := make([]any, len(s.seed))
			for i, p := range s.seed {
				docs[i] = p
			}
			if _, err := s.store.CreateMany(ctx, Collection, docs); err != nil {
				return nil, fmt.Errorf("insert seed products: %w", err)
			}
			s.logger.Info("catalog seeded", "count", len(docs))
		}

		s.seeded.Store(true)
		return nil, nil
	})
	return err
}

// List returns every product, or only those whose category equals category
// exactly when it is non-empty. Seeding failures are logged and do not fail
// the listing.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		s.logger.Warn("catalog seeding failed", "error", err)
	}

	var filter store.Filter
	if category != "" {
		filter = store.Filter{"category": category}
	}

	recs, err := s.store.FindMany(ctx, Collection, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]domain.Product, 0, len(recs))
	for _, rec := range recs {
		p, err := decode(rec)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Get returns the product with the given id, or nil if none exists.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	rec, err := s.store.FindOne(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}

	p, err := decode(*rec)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create validates in, stores the product with its defaults applied and
// returns the stored record.
func (s *Service) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, Collection, in.Product())
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %s missing after insert: %w", id, domain.ErrStoreUnavailable)
	}

	s.logger.Info("product created", "product_id", p.ID, "category", p.Category)
	return p, nil
}

func decode(rec store.Record) (domain.Product, error) {
	var p domain.Product
	if err := rec.Decode(&p); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %s: %w", rec.ID, err)
	}
	p.ID = rec.ID
	return p, nil
}
