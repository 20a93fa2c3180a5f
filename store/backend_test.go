package store

import (
	"testing"

	"blog-viewstats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		views    map[string]int64
		repaired bool
	}{
		{
			name:  "empty input",
			input: "",
			views: map[string]int64{},
		},
		{
			name:     "not json",
			input:    "{views: nope",
			views:    map[string]int64{},
			repaired: true,
		},
		{
			name:     "missing fields",
			input:    `{"views":{"/a":2}}`,
			views:    map[string]int64{"/a": 2},
			repaired: true,
		},
		{
			name:     "wrong field type only resets that field",
			input:    `{"views":{"/a":2},"byDevice":"x","byCountry":{},"daily":{}}`,
			views:    map[string]int64{"/a": 2},
			repaired: true,
		},
		{
			name:     "negative counters dropped",
			input:    `{"views":{"/a":-1,"/b":1},"byDevice":{},"byCountry":{},"daily":{}}`,
			views:    map[string]int64{"/b": 1},
			repaired: true,
		},
		{
			name:  "complete document",
			input: `{"views":{"/a":1},"byDevice":{"bot":1},"byCountry":{"XX":1},"daily":{"2026-01-01":1}}`,
			views: map[string]int64{"/a": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state, repaired := decodeDocument([]byte(tt.input))
			require.NotNil(t, state)
			assert.Equal(t, tt.views, state.Views)
			assert.NotNil(t, state.ByDevice)
			assert.NotNil(t, state.ByCountry)
			assert.NotNil(t, state.Daily)
			assert.Equal(t, tt.repaired, repaired)
		})
	}
}

func TestEncodeDocumentIsPrettyAndComplete(t *testing.T) {
	t.Parallel()

	data, err := encodeDocument(&models.AggregateState{Views: map[string]int64{"/a": 1}})
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"views\"")
	for _, field := range []string{`"views"`, `"byDevice"`, `"byCountry"`, `"daily"`} {
		assert.Contains(t, string(data), field)
	}
}
