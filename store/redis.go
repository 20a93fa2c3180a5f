package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-viewstats/models"
	"blog-viewstats/utils"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores the document as one string value under a fixed key.
type RedisBackend struct {
	client  *redis.Client
	key     string
	retries int
}

func NewRedisBackend(client *redis.Client, key string, txRetries int) *RedisBackend {
	if txRetries < 1 {
		txRetries = 1
	}
	return &RedisBackend{client: client, key: key, retries: txRetries}
}

func (r *RedisBackend) Name() string { return "redis" }

// Read implements Backend. A missing key reads as an empty document.
func (r *RedisBackend) Read(ctx context.Context) (*models.AggregateState, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewAggregateState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return decodeAndReport(r.Name(), data), nil
}

// Write implements Backend by overwriting the key.
func (r *RedisBackend) Write(ctx context.Context, state *models.AggregateState) error {
	data, err := encodeDocument(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Update implements Transactor with an optimistic WATCH/MULTI transaction.
// Conflicting writers are retried with backoff.
func (r *RedisBackend) Update(ctx context.Context, fn func(state *models.AggregateState) error) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, r.key).Bytes()
		var state *models.AggregateState
		switch {
		case errors.Is(err, redis.Nil):
			state = models.NewAggregateState()
		case err != nil:
			return err
		default:
			state = decodeAndReport(r.Name(), data)
		}

		if err := fn(state); err != nil {
			return err
		}

		out, err := encodeDocument(state)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, out, 0)
			return nil
		})
		return err
	}

	err := utils.RetryWithExponentialBackoff(ctx, func() error {
		return r.client.Watch(ctx, txf, r.key)
	}, func(err error) bool {
		return errors.Is(err, redis.TxFailedErr)
	}, r.retries, 5*time.Millisecond)
	if err != nil {
		return fmt.Errorf("redis transaction on %s: %w", r.key, err)
	}
	return nil
}

// Close is a no-op; the client is shared and closed by its owner.
func (r *RedisBackend) Close() error { return nil }
