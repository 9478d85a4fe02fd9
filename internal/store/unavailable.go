package store

import (
	"context"
	"fmt"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Unavailable stands in when no usable connection exists. Reads come back
// empty and writes fail with domain.ErrStoreUnavailable.
type Unavailable struct {
	reason error
}

func NewUnavailable(reason error) *Unavailable {
	return &Unavailable{reason: reason}
}

func (u *Unavailable) err() error {
	if u.reason == nil {
		return domain.ErrStoreUnavailable
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, u.reason)
}

func (u *Unavailable) Create(context.Context, string, any) (string, error) {
	return "", u.err()
}

func (u *Unavailable) CreateMany(context.Context, string, []any) ([]string, error) {
	return nil, u.err()
}

func (u *Unavailable) FindOne(context.Context, string, string) (*Record, error) {
	return nil, ErrNotFound
}

func (u *Unavailable) FindMany(context.Context, string, Filter) ([]Record, error) {
	return []Record{}, nil
}

func (u *Unavailable) Count(context.Context, string) (int64, error) { return 0, nil }

func (u *Unavailable) Collections(context.Context) ([]string, error) { return nil, u.err() }

func (u *Unavailable) Ping(context.Context) error { return u.err() }

func (u *Unavailable) Name() string { return "" }

func (u *Unavailable) Close() error { return nil }

var _ Store = (*Unavailable)(nil)
