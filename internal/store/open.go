package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"

	"github.com/joao-fontenele/storefront/internal/telemetry"
)

var ErrNoConnectionString = errors.New("no database connection string configured")

// Open connects to the store named by databaseURL. The URL scheme picks the
// backend: postgres/postgresql, mongodb/mongodb+srv, or memory.
func Open(ctx context.Context, databaseURL, databaseName string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoConnectionString
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		db, err := telemetry.OpenDB("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return NewPostgres(db, strings.TrimPrefix(u.Path, "/")), nil

	case "mongodb", "mongodb+srv":
		m, err := NewMongo(ctx, databaseURL, databaseName)
		if err != nil {
			return nil, err
		}
		if err := m.Ping(ctx); err != nil {
			_ = m.Close()
			return nil, err
		}
		return m, nil

	case "memory":
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}
