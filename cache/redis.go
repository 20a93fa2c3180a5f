package cache

import (
	"context"
	"crypto/tls"
	"time"

	"blog-viewstats/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore wraps the redis client shared by the redis store backend,
// the live view feed and the rate limiter.
type RedisStore struct {
	Client *redis.Client
}

// NewRedisStore initializes a new RedisStore and pings the server.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	return dial(ctx, &redis.Options{Addr: addr, Password: password, DB: db})
}

// DialRedis connects with the redis section of the configuration,
// using TLS when the configured URL asked for it.
func DialRedis(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	opts := &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return dial(ctx, opts)
}

func dial(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &RedisStore{Client: rdb}, nil
}

// Incr increments key and starts its expiry window on the first hit.
// It returns the new count and the remaining time to live.
func (r *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		r.Client.Expire(ctx, key, window)
	}
	ttl, err := r.Client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return count, ttl, nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.Client.Close()
}
