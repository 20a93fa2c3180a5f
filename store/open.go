package store

import (
	"context"
	"errors"
	"fmt"

	"blog-viewstats/cache"
	"blog-viewstats/config"
)

// Deps carries clients shared with other components. Nil clients are
// created on demand for the backend that needs them.
type Deps struct {
	Redis *cache.RedisStore
	S3    S3API
}

// OpenBackend builds the backend named by cfg.Store.Backend, which must
// already be resolved.
func OpenBackend(ctx context.Context, cfg *config.Config, deps Deps) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		return NewFileBackend(cfg.Store.FilePath)
	case config.BackendRedis:
		if deps.Redis == nil {
			return nil, errors.New("redis backend needs a redis client")
		}
		return NewRedisBackend(deps.Redis.Client, cfg.Redis.Key, cfg.Redis.TxRetries), nil
	case config.BackendS3:
		client := deps.S3
		if client == nil {
			c, err := NewS3Client(ctx, cfg.S3.Region, cfg.S3.Endpoint, cfg.S3.PathStyle)
			if err != nil {
				return nil, err
			}
			client = c
		}
		return NewS3Backend(client, cfg.S3.Bucket, cfg.S3.Key), nil
	case config.BackendSQLite:
		db, err := config.OpenDB(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return NewSQLiteBackend(db, cfg.SQLite.Name), nil
	case config.BackendBolt:
		return NewBoltBackend(cfg.Bolt.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store.Backend)
	}
}

// Open builds the configured backend and wraps it in a Store.
func Open(ctx context.Context, cfg *config.Config, deps Deps) (*Store, error) {
	backend, err := OpenBackend(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	s, err := New(backend, Options{
		Consistency: cfg.Store.Consistency,
		BatchSize:   cfg.Store.BatchSize,
		QueueDepth:  cfg.Store.QueueDepth,
		IOTimeout:   cfg.Store.IOTimeout,
		TopPaths:    cfg.Summary.TopPaths,
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return s, nil
}
