// Package store is a small document store over named collections. Documents
// are JSON objects; every backend assigns its own text identifiers so callers
// never depend on a native id format.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document not found")

// Record is a stored document together with its assigned identifier. Body
// never contains the identifier.
type Record struct {
	ID   string
	Body json.RawMessage
}

// Decode unmarshals the body into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Filter selects documents whose top-level fields equal the given text values.
// An empty filter matches every document in the collection.
type Filter map[string]string

type Store interface {
	Create(ctx context.Context, collection string, doc any) (string, error)
	CreateMany(ctx context.Context, collection string, docs []any) ([]string, error)
	FindOne(ctx context.Context, collection, id string) (*Record, error)
	FindMany(ctx context.Context, collection string, filter Filter) ([]Record, error)
	Count(ctx context.Context, collection string) (int64, error)
	Collections(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

func newID() string {
	return uuid.New().String()
}

// encode renders doc as a JSON object.
func encode(doc any) (json.RawMessage, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("encode document: %T is not a JSON object", doc)
	}
	return body, nil
}
