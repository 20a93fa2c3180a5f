package batcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blog-viewstats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter is a FlushFunc target that counts per path and records batch sizes.
type counter struct {
	mu      sync.Mutex
	views   map[string]int64
	batches []int
	err     error
}

func (c *counter) flush(events []ViewEvent) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.batches = append(c.batches, len(events))
	out := make([]int64, len(events))
	for i, evt := range events {
		c.views[evt.Record.Path]++
		out[i] = c.views[evt.Record.Path]
	}
	return out, nil
}

func newCounter() *counter { return &counter{views: make(map[string]int64)} }

func TestCountBatcher_SequentialCounts(t *testing.T) {
	c := newCounter()
	b := NewCountBatcher(4, 16, c.flush)
	b.Start()
	defer b.Stop()

	for i := int64(1); i <= 3; i++ {
		views, err := b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/a"}})
		require.NoError(t, err)
		assert.Equal(t, i, views)
	}
}

func TestCountBatcher_ConcurrentBatchesRespectThreshold(t *testing.T) {
	c := newCounter()
	b := NewCountBatcher(5, 100, c.flush)
	b.Start()

	var wg sync.WaitGroup
	seen := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			views, err := b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/hot"}})
			assert.NoError(t, err)
			seen <- views
		}()
	}
	wg.Wait()
	b.Stop()
	close(seen)

	// Every caller gets a distinct count.
	got := make(map[int64]bool)
	for v := range seen {
		assert.False(t, got[v], "duplicate count %d", v)
		got[v] = true
	}
	assert.Len(t, got, 50)
	assert.Equal(t, int64(50), c.views["/hot"])
	for _, size := range c.batches {
		assert.LessOrEqual(t, size, 5)
	}
}

func TestCountBatcher_FlushErrorFailsBatch(t *testing.T) {
	c := newCounter()
	c.err = errors.New("disk full")
	b := NewCountBatcher(2, 4, c.flush)
	b.Start()
	defer b.Stop()

	_, err := b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/a"}})
	assert.ErrorContains(t, err, "disk full")
}

func TestCountBatcher_MismatchedCounts(t *testing.T) {
	b := NewCountBatcher(1, 1, func([]ViewEvent) ([]int64, error) { return nil, nil })
	b.Start()
	defer b.Stop()

	_, err := b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/a"}})
	assert.Error(t, err)
}

func TestCountBatcher_EnqueueAfterStop(t *testing.T) {
	b := NewCountBatcher(1, 1, newCounter().flush)
	b.Start()
	b.Stop()
	b.Stop()

	_, err := b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/a"}})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestCountBatcher_ContextCancelledWhileQueueFull(t *testing.T) {
	release := make(chan struct{})
	b := NewCountBatcher(1, 1, func(events []ViewEvent) ([]int64, error) {
		<-release
		return make([]int64, len(events)), nil
	})
	b.Start()
	defer func() {
		close(release)
		b.Stop()
	}()

	// First event blocks the writer inside flush, second fills the queue.
	go func() { _, _ = b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/a"}}) }()
	go func() { _, _ = b.Enqueue(context.Background(), ViewEvent{Record: models.ViewRecord{Path: "/b"}}) }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := b.Enqueue(ctx, ViewEvent{Record: models.ViewRecord{Path: "/c"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
