package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyStore fails the first failures CreateMany calls and counts every call.
type flakyStore struct {
	store.Store
	failures   atomic.Int32
	createMany atomic.Int32
}

func (f *flakyStore) CreateMany(ctx context.Context, collection string, docs []any) ([]string, error) {
	f.createMany.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, errors.New("connection reset")
	}
	return f.Store.CreateMany(ctx, collection, docs)
}

// cancelAwareStore fails writes made on a cancelled context.
type cancelAwareStore struct {
	store.Store
}

func (c cancelAwareStore) CreateMany(ctx context.Context, collection string, docs []any) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.Store.CreateMany(ctx, collection, docs)
}

func titles(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestList_SeedsEmptyCatalog(t *testing.T) {
	svc := NewService(store.NewMemory(), testLogger())

	products, err := svc.List(context.Background(), "")
	require.NoError(t, err)

	if diff := cmp.Diff(SeedProducts(), products, cmpopts.IgnoreFields(domain.Product{}, "ID")); diff != "" {
		t.Errorf("seeded catalog mismatch (-want +got):\n%s", diff)
	}

	for _, p := range products {
		assert.NotEmpty(t, p.ID)
	}
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(59)))
}

func TestList_SeedsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := NewService(mem, testLogger())

	_, err := svc.List(ctx, "")
	require.NoError(t, err)
	_, err = svc.List(ctx, "")
	require.NoError(t, err)

	// A second service over the same store sees a non-empty collection.
	_, err = NewService(mem, testLogger()).List(ctx, "")
	require.NoError(t, err)

	n, err := mem.Count(ctx, Collection)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestList_ConcurrentFirstAccessSeedsOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := NewService(mem, testLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.List(ctx, "")
		}()
	}
	wg.Wait()

	n, err := mem.Count(ctx, Collection)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestList_DoesNotSeedNonEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	_, err := mem.Create(ctx, Collection, domain.Product{Title: "Existing", Category: "caps", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	products, err := NewService(mem, testLogger()).List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Existing"}, titles(products))
}

func TestList_CategoryFilter(t *testing.T) {
	svc := NewService(store.NewMemory(), testLogger())

	tests := []struct {
		category string
		want     []string
	}{
		{category: "", want: []string{"Smiley Classic Hoodie", "Smiley Minimal Tee", "Smiley Oversized Hoodie", "Smiley Retro Tee"}},
		{category: "hoodies", want: []string{"Smiley Classic Hoodie", "Smiley Oversized Hoodie"}},
		{category: "t-shirts", want: []string{"Smiley Minimal Tee", "Smiley Retro Tee"}},
		{category: "Hoodies", want: []string{}},
		{category: "caps", want: []string{}},
	}

	for _, tt := range tests {
		t.Run("category="+tt.category, func(t *testing.T) {
			products, err := svc.List(context.Background(), tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(products))
		})
	}
}

func TestList_SeedFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Store: store.NewMemory()}
	fs.failures.Store(1)
	svc := NewService(fs, testLogger())

	products, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, products)

	products, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 4)

	_, err = svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fs.createMany.Load())
}

func TestEnsureSeeded_SurvivesCancelledCaller(t *testing.T) {
	mem := store.NewMemory()
	svc := NewService(cancelAwareStore{Store: mem}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, svc.EnsureSeeded(ctx))

	n, err := mem.Count(context.Background(), Collection)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestList_DegradedStoreReturnsEmpty(t *testing.T) {
	svc := NewService(store.NewUnavailable(errors.New("no url")), testLogger())

	products, err := svc.List(context.Background(), "hoodies")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), testLogger())

	products, err := svc.List(ctx, "t-shirts")
	require.NoError(t, err)
	require.NotEmpty(t, products)

	got, err := svc.Get(ctx, products[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Smiley Minimal Tee", got.Title)

	missing, err := svc.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults and returns stored record", func(t *testing.T) {
		svc := NewService(store.NewMemory(), testLogger())
		price := decimal.RequireFromString("19.99")

		p, err := svc.Create(ctx, domain.ProductInput{Title: "Smiley Cap", Price: &price, Category: "caps"})
		require.NoError(t, err)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Smiley Cap", p.Title)
		assert.Nil(t, p.Description)
		assert.True(t, p.Price.Equal(price))
		assert.Equal(t, []string{}, p.Images)
		assert.Equal(t, []string{"S", "M", "L", "XL"}, p.Sizes)
		assert.True(t, p.InStock)

		again, err := svc.Get(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, again)
	})

	t.Run("explicit fields win over defaults", func(t *testing.T) {
		svc := NewService(store.NewMemory(), testLogger())
		price := decimal.Zero
		inStock := false

		p, err := svc.Create(ctx, domain.ProductInput{
			Title:    "Smiley Sticker",
			Price:    &price,
			Category: "accessories",
			Sizes:    []string{"ONE"},
			InStock:  &inStock,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"ONE"}, p.Sizes)
		assert.False(t, p.InStock)
		assert.True(t, p.Price.IsZero())
	})

	t.Run("negative price is rejected before any write", func(t *testing.T) {
		mem := store.NewMemory()
		svc := NewService(mem, testLogger())
		price := decimal.RequireFromString("-1")

		_, err := svc.Create(ctx, domain.ProductInput{Title: "Bad", Price: &price, Category: "caps"})

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "price")

		n, err := mem.Count(ctx, Collection)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("degraded store fails with store unavailable", func(t *testing.T) {
		svc := NewService(store.NewUnavailable(nil), testLogger())
		price := decimal.NewFromInt(5)

		_, err := svc.Create(ctx, domain.ProductInput{Title: "Cap", Price: &price, Category: "caps"})
		require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}
