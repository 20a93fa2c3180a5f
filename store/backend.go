package store

import (
	"context"
	"fmt"

	"blog-viewstats/metrics"
	"blog-viewstats/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Backend persists the single aggregate document. Read must never fail on
// a malformed or absent document; it returns a repaired one instead.
type Backend interface {
	Read(ctx context.Context) (*models.AggregateState, error)
	Write(ctx context.Context, state *models.AggregateState) error
	Name() string
	Close() error
}

// Transactor is implemented by backends that can run a read-modify-write
// cycle atomically.
type Transactor interface {
	Update(ctx context.Context, fn func(state *models.AggregateState) error) error
}

// encodeDocument renders the document the way it is stored on every backend.
func encodeDocument(state *models.AggregateState) ([]byte, error) {
	data, err := json.MarshalIndent(state.Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode aggregate document: %w", err)
	}
	return data, nil
}

// decodeDocument parses a stored document field by field so a broken field
// only resets that mapping. repaired is true when anything was substituted.
func decodeDocument(data []byte) (state *models.AggregateState, repaired bool) {
	state = models.NewAggregateState()
	if len(data) == 0 {
		return state, false
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return state, true
	}

	fields := map[string]*map[string]int64{
		"views":     &state.Views,
		"byDevice":  &state.ByDevice,
		"byCountry": &state.ByCountry,
		"daily":     &state.Daily,
	}
	for name, target := range fields {
		msg, ok := raw[name]
		if !ok || string(msg) == "null" {
			repaired = true
			continue
		}
		var m map[string]int64
		if err := json.Unmarshal(msg, &m); err != nil {
			repaired = true
			continue
		}
		*target = m
	}

	before := countKeys(state)
	state.Normalize()
	if countKeys(state) != before {
		repaired = true
	}
	return state, repaired
}

func countKeys(s *models.AggregateState) int {
	return len(s.Views) + len(s.ByDevice) + len(s.ByCountry) + len(s.Daily)
}

// decodeAndReport decodes data and logs a repaired document.
func decodeAndReport(backend string, data []byte) *models.AggregateState {
	state, repaired := decodeDocument(data)
	if repaired {
		metrics.StoreRepairs.WithLabelValues(backend).Inc()
		log.Warn().Str("backend", backend).Msg("aggregate document was malformed, substituted defaults")
	}
	return state
}
