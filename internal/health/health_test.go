package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/storefront/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type brokenStore struct {
	*store.Memory
	err error
}

func (b *brokenStore) Collections(context.Context) ([]string, error) { return nil, b.err }

func TestHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
		wantState  Status
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantState: StatusHealthy},
		{name: "unhealthy", checkErr: errors.New("ping failed"), wantStatus: http.StatusServiceUnavailable, wantState: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler("test")
			h.RegisterChecker("store", NewSimpleChecker("store", func(context.Context) error { return tt.checkErr }))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Equal(t, "test", resp.Version)
			require.Contains(t, resp.Checks, "store")
			assert.Equal(t, tt.wantState, resp.Checks["store"].Status)
			if tt.checkErr != nil {
				assert.Equal(t, tt.checkErr.Error(), resp.Checks["store"].Message)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRootHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	RootHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Smiley Store Backend is running"}`, rec.Body.String())
}

func TestDiagnostics(t *testing.T) {
	ctx := context.Background()

	t.Run("degraded", func(t *testing.T) {
		d := NewDiagnostics(store.NewUnavailable(errors.New("no url")), false, testLogger())

		rec := httptest.NewRecorder()
		d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"backend": "Running",
			"database": "Not Available",
			"database_url": null,
			"database_name": null,
			"connection_status": "Not Connected",
			"collections": []
		}`, rec.Body.String())
	})

	t.Run("connected", func(t *testing.T) {
		mem := store.NewMemory()
		for _, c := range []string{"order", "product"} {
			_, err := mem.Create(ctx, c, map[string]string{"k": "v"})
			require.NoError(t, err)
		}

		r := NewDiagnostics(mem, true, testLogger()).Report(ctx)
		assert.Equal(t, "Connected & Working", r.Database)
		assert.Equal(t, "Connected", r.ConnectionStatus)
		require.NotNil(t, r.DatabaseURL)
		assert.Equal(t, "Set", *r.DatabaseURL)
		require.NotNil(t, r.DatabaseName)
		assert.Equal(t, "memory", *r.DatabaseName)
		assert.Equal(t, []string{"order", "product"}, r.Collections)
	})

	t.Run("lists at most ten collections", func(t *testing.T) {
		mem := store.NewMemory()
		for _, c := range strings.Split("a b c d e f g h i j k l", " ") {
			_, err := mem.Create(ctx, c, map[string]string{"k": "v"})
			require.NoError(t, err)
		}

		r := NewDiagnostics(mem, true, testLogger()).Report(ctx)
		assert.Len(t, r.Collections, 10)
		assert.Equal(t, "a", r.Collections[0])
	})

	t.Run("store error is reported, not raised", func(t *testing.T) {
		long := strings.Repeat("x", 100)
		d := NewDiagnostics(&brokenStore{Memory: store.NewMemory(), err: errors.New(long)}, false, testLogger())

		r := d.Report(ctx)
		assert.Equal(t, "Error: "+strings.Repeat("x", 80), r.Database)
		assert.Equal(t, "Not Connected", r.ConnectionStatus)
		require.NotNil(t, r.DatabaseURL)
		assert.Equal(t, "Not Set", *r.DatabaseURL)
		assert.Empty(t, r.Collections)
	})
}
