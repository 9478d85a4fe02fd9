package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/storefront/internal/store"
)

const maxListedCollections = 10

// Report describes whether the service can reach its document store.
type Report struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      *string  `json:"database_url"`
	DatabaseName     *string  `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

// Diagnostics builds the /test report. It never fails the request: store
// errors are folded into the report.
type Diagnostics struct {
	store          store.Store
	databaseURLSet bool
	logger         *slog.Logger
}

func NewDiagnostics(s store.Store, databaseURLSet bool, logger *slog.Logger) *Diagnostics {
	return &Diagnostics{
		store:          s,
		databaseURLSet: databaseURLSet,
		logger:         logger,
	}
}

func (d *Diagnostics) Report(ctx context.Context) Report {
	r := Report{
		Backend:          "Running",
		Database:         "Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if _, degraded := d.store.(*store.Unavailable); degraded {
		return r
	}

	r.Database = "Available"
	r.DatabaseURL = ptr("Not Set")
	if d.databaseURLSet {
		r.DatabaseURL = ptr("Set")
	}
	r.DatabaseName = ptr("Not Set")
	if name := d.store.Name(); name != "" {
		r.DatabaseName = ptr(name)
	}

	names, err := d.store.Collections(ctx)
	if err != nil {
		d.logger.Warn("store diagnostic failed", "error", err)
		r.Database = "Error: " + truncate(err.Error(), 80)
		return r
	}

	if len(names) > maxListedCollections {
		names = names[:maxListedCollections]
	}
	if names != nil {
		r.Collections = names
	}
	r.Database = "Connected & Working"
	r.ConnectionStatus = "Connected"
	return r
}

func (d *Diagnostics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(d.Report(ctx))
}

// RootHandler answers the banner served at /.
func RootHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Smiley Store Backend is running"})
}

func ptr(s string) *string { return &s }

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
