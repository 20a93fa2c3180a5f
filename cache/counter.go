package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Counter is a fixed-window hit counter used for rate limiting.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// MemoryCounter keeps windows in process memory.
type MemoryCounter struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{cache: gocache.New(time.Minute, 5*time.Minute)}
}

// Incr implements Counter.
func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, expires, found := m.cache.GetWithExpiration(key)
	if !found {
		m.cache.Set(key, int64(1), window)
		return 1, window, nil
	}
	count, err := m.cache.IncrementInt64(key, 1)
	if err != nil {
		return 0, 0, err
	}
	ttl := time.Until(expires)
	if ttl <= 0 {
		ttl = window
	}
	return count, ttl, nil
}
