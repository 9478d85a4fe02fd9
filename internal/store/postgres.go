package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Postgres stores every collection in the documents table, one JSONB body
// per row. The table is created by the migrations in /migrations.
type Postgres struct {
	db   *sql.DB
	name string
}

func NewPostgres(db *sql.DB, name string) *Postgres {
	return &Postgres{db: db, name: name}
}

func (p *Postgres) Create(ctx context.Context, collection string, doc any) (string, error) {
	body, err := encode(doc)
	if err != nil {
		return "", err
	}

	id := newID()
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (id, collection, body)
		VALUES ($1, $2, $3::jsonb)
	`, id, collection, string(body))
	if err != nil {
		return "", unavailable("insert into "+collection, err)
	}

	return id, nil
}

func (p *Postgres) CreateMany(ctx context.Context, collection string, docs []any) ([]string, error) {
	bodies := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		body, err := encode(doc)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin bulk insert", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]string, 0, len(bodies))
	for _, body := range bodies {
		id := newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (id, collection, body)
			VALUES ($1, $2, $3::jsonb)
		`, id, collection, string(body))
		if err != nil {
			return nil, unavailable("bulk insert into "+collection, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit bulk insert", err)
	}

	return ids, nil
}

func (p *Postgres) FindOne(ctx context.Context, collection, id string) (*Record, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, unavailable("select from "+collection, err)
	}

	return &Record{ID: id, Body: body}, nil
}

func (p *Postgres) FindMany(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	query, args := findManyQuery(collection, filter)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query "+collection, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var body []byte
		if err := rows.Scan(&rec.ID, &body); err != nil {
			return nil, unavailable("scan "+collection, err)
		}
		rec.Body = body
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate "+collection, err)
	}

	return records, nil
}

func findManyQuery(collection string, filter Filter) (string, []any) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("SELECT id, body FROM documents WHERE collection = $1")
	args := []any{collection}
	for _, k := range keys {
		n := len(args)
		b.WriteString(" AND body ->> $" + strconv.Itoa(n+1) + "::text = $" + strconv.Itoa(n+2) + "::text")
		args = append(args, k, filter[k])
	}
	b.WriteString(" ORDER BY seq")

	return b.String(), args
}

func (p *Postgres) Count(ctx context.Context, collection string) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `
		SELECT count(*)
		FROM documents
		WHERE collection = $1
	`, collection).Scan(&n)
	if err != nil {
		return 0, unavailable("count "+collection, err)
	}
	return n, nil
}

func (p *Postgres) Collections(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT DISTINCT collection
		FROM documents
		ORDER BY collection
	`)
	if err != nil {
		return nil, unavailable("list collections", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("scan collection name", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate collections", err)
	}

	return names, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (p *Postgres) Name() string { return p.name }

func (p *Postgres) Close() error {
	return p.db.Close()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

var _ Store = (*Postgres)(nil)
