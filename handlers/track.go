package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"blog-viewstats/classifier"
	"blog-viewstats/middlewares"
	"blog-viewstats/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const defaultMaxBodyBytes = 4 << 10

// TrackHandler records one page view. The body is {"path": "..."}; the
// content type is not checked so navigator.sendBeacon payloads work.
func (h *Handler) TrackHandler(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	var request struct {
		Path *string `json:"path"`
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil || json.Unmarshal(body, &request) != nil || request.Path == nil {
		writeError(w, http.StatusBadRequest, "Missing path")
		return
	}
	path := strings.TrimSpace(*request.Path)
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path")
		return
	}

	rec := models.ViewRecord{
		Path:    path,
		Device:  classifier.Device(r.UserAgent()),
		Country: h.Countries.Country(r.Context(), r.Header, middlewares.ClientIP(r)),
	}

	views, err := h.Store.RecordView(r.Context(), rec)
	if err != nil {
		middlewares.CaptureError(r, err, "failed to record view")
		writeError(w, http.StatusInternalServerError, "Failed to record view")
		return
	}

	h.publish(rec, views)
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// publish hands the recorded view to the live feed without blocking the
// response. Feed failures are logged only.
func (h *Handler) publish(rec models.ViewRecord, views int64) {
	if h.Publisher == nil || h.Tasks == nil {
		return
	}
	evt := models.ViewEvent{
		Path:    rec.Path,
		Device:  rec.Device,
		Country: rec.Country,
		Views:   views,
		At:      h.now().UTC(),
	}
	h.Tasks.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.Publisher.Publish(ctx, evt); err != nil {
			log.Warn().Err(err).Str("path", evt.Path).Msg("failed to publish view event")
		}
	})
}
