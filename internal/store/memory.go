package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory keeps documents in process. Used for local runs and as the test fake.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Record
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Record)}
}

func (m *Memory) Create(_ context.Context, collection string, doc any) (string, error) {
	body, err := encode(doc)
	if err != nil {
		return "", err
	}

	rec := Record{ID: newID(), Body: body}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], rec)
	m.mu.Unlock()

	return rec.ID, nil
}

func (m *Memory) CreateMany(_ context.Context, collection string, docs []any) ([]string, error) {
	recs := make([]Record, 0, len(docs))
	for _, doc := range docs {
		body, err := encode(doc)
		if err != nil {
			return nil, err
		}
		recs = append(recs, Record{ID: newID(), Body: body})
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], recs...)
	m.mu.Unlock()

	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	return ids, nil
}

func (m *Memory) FindOne(_ context.Context, collection, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.collections[collection] {
		if rec.ID == id {
			return &Record{ID: rec.ID, Body: clone(rec.Body)}, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindMany(_ context.Context, collection string, filter Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0)
	for _, rec := range m.collections[collection] {
		if !matches(rec.Body, filter) {
			continue
		}
		out = append(out, Record{ID: rec.ID, Body: clone(rec.Body)})
	}
	return out, nil
}

func (m *Memory) Count(_ context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.collections[collection])), nil
}

func (m *Memory) Collections(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Close() error { return nil }

// matches compares fields the way Postgres' ->> operator does: strings by
// value, everything else by its JSON text.
func matches(body json.RawMessage, filter Filter) bool {
	if len(filter) == 0 {
		return true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}

	for key, want := range filter {
		raw, ok := fields[key]
		if !ok {
			return false
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != want {
				return false
			}
			continue
		}
		if string(raw) != want {
			return false
		}
	}
	return true
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}

var _ Store = (*Memory)(nil)
