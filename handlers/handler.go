package handlers

import (
	"context"
	"net/http"
	"time"

	"blog-viewstats/models"
	"blog-viewstats/queue"

	"github.com/goccy/go-json"
)

// StatsStore is the part of store.Store the handlers use.
type StatsStore interface {
	RecordView(ctx context.Context, rec models.ViewRecord) (int64, error)
	Views(ctx context.Context, path string) (int64, error)
	Summary(ctx context.Context) (*models.Summary, error)
	Ping(ctx context.Context) error
	Backend() string
}

// CountryResolver resolves the visitor country of a request.
type CountryResolver interface {
	Country(ctx context.Context, h http.Header, ip string) string
}

// Publisher receives recorded views for the live feed.
type Publisher interface {
	Publish(ctx context.Context, evt models.ViewEvent) error
}

// Handler serves the ingestion and query endpoints.
type Handler struct {
	Store     StatsStore
	Countries CountryResolver

	// Publisher and Tasks are optional; both must be set for the live feed.
	Publisher Publisher
	Tasks     *queue.Worker

	MaxBodyBytes int64
	Now          func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
