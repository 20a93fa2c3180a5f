package handlers

import (
	"net/http"

	"blog-viewstats/middlewares"
)

// StatsHandler returns the view count of one path.
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "Missing path")
		return
	}

	views, err := h.Store.Views(r.Context(), path)
	if err != nil {
		captureReadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"views": views})
}

// SummaryHandler returns the dashboard aggregates. It is read-only.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Store.Summary(r.Context())
	if err != nil {
		captureReadError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, summary)
}

func captureReadError(w http.ResponseWriter, r *http.Request, err error) {
	middlewares.CaptureError(r, err, "failed to read stats")
	writeError(w, http.StatusInternalServerError, "Failed to read stats")
}
