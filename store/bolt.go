package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"blog-viewstats/models"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketAggregate = []byte("aggregate")
	keyDocument     = []byte("document")
)

// BoltBackend keeps the document in a bbolt file. bbolt allows one writer
// at a time, which makes Update atomic across goroutines.
type BoltBackend struct {
	db *bolt.DB
}

func NewBoltBackend(path string) (*BoltBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketAggregate)
		return createErr
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create aggregate bucket: %w", err)
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Name() string { return "bolt" }

func (b *BoltBackend) read(tx *bolt.Tx) *models.AggregateState {
	data := tx.Bucket(bucketAggregate).Get(keyDocument)
	if data == nil {
		return models.NewAggregateState()
	}
	// data is only valid inside the transaction; decoding copies it.
	return decodeAndReport(b.Name(), data)
}

func (b *BoltBackend) write(tx *bolt.Tx, state *models.AggregateState) error {
	data, err := encodeDocument(state)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketAggregate).Put(keyDocument, data)
}

// Read implements Backend.
func (b *BoltBackend) Read(_ context.Context) (*models.AggregateState, error) {
	var state *models.AggregateState
	err := b.db.View(func(tx *bolt.Tx) error {
		state = b.read(tx)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Write implements Backend.
func (b *BoltBackend) Write(_ context.Context, state *models.AggregateState) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return b.write(tx, state)
	})
}

// Update implements Transactor.
func (b *BoltBackend) Update(_ context.Context, fn func(state *models.AggregateState) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		state := b.read(tx)
		if err := fn(state); err != nil {
			return err
		}
		return b.write(tx, state)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
