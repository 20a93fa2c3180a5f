package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"blog-viewstats/config"
	"blog-viewstats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltBackend_RoundTrip(t *testing.T) {
	t.Parallel()
	b, err := NewBoltBackend(filepath.Join(t.TempDir(), "data", "viewstats.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	roundTrip(t, b)
}

func TestBoltBackend_ReopenKeepsDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "viewstats.bolt")

	b, err := NewBoltBackend(path)
	require.NoError(t, err)
	state := models.NewAggregateState()
	state.Apply(models.ViewRecord{Path: "/kept", Device: models.DeviceDesktop, Country: "JP"}, "2026-02-02")
	require.NoError(t, b.Write(ctx, state))
	require.NoError(t, b.Close())

	b, err = NewBoltBackend(path)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views["/kept"])
	assert.Equal(t, int64(1), got.ByCountry["JP"])
}

func TestBoltBackend_Transaction(t *testing.T) {
	t.Parallel()
	b, err := NewBoltBackend(filepath.Join(t.TempDir(), "viewstats.bolt"))
	require.NoError(t, err)
	s, err := New(b, Options{Consistency: config.ConsistencyTransaction})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := s.RecordView(context.Background(), models.ViewRecord{Path: "/bolt", Device: models.DeviceTablet, Country: "BR"})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	views, err := s.Views(context.Background(), "/bolt")
	require.NoError(t, err)
	assert.Equal(t, int64(80), views)
}
