package cache

import (
	"errors"
	"time"

	"github.com/allegro/bigcache"
)

// GeoCache defines the interface for caching resolved country codes by IP.
type GeoCache interface {
	Set(ip, country string) error
	Get(ip string) (string, error)
	Delete(ip string) error
	Close() error
}

// ErrMiss is returned by Get when the ip is not cached.
var ErrMiss = errors.New("cache miss")

// BigCacheStore is an implementation of GeoCache using BigCache.
type BigCacheStore struct {
	cache *bigcache.BigCache
}

// NewBigCacheStore initializes a new BigCacheStore whose entries live for ttl.
func NewBigCacheStore(ttl time.Duration) (*BigCacheStore, error) {
	config := bigcache.Config{
		Shards:           256,
		LifeWindow:       ttl,
		CleanWindow:      5 * time.Minute,
		MaxEntrySize:     64,
		HardMaxCacheSize: 64,
		Verbose:          false,
	}
	bc, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}
	return &BigCacheStore{
		cache: bc,
	}, nil
}

// Set stores a country code for ip.
func (b *BigCacheStore) Set(ip, country string) error {
	return b.cache.Set(ip, []byte(country))
}

// Get returns the cached country code for ip, or ErrMiss.
func (b *BigCacheStore) Get(ip string) (string, error) {
	data, err := b.cache.Get(ip)
	if err != nil {
		// bigcache only fails Get for absent or expired entries.
		return "", ErrMiss
	}
	return string(data), nil
}

// Delete removes ip from the cache.
func (b *BigCacheStore) Delete(ip string) error {
	err := b.cache.Delete(ip)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Close stops the background cleaner.
func (b *BigCacheStore) Close() error {
	return b.cache.Close()
}
