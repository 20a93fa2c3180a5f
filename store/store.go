package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blog-viewstats/batcher"
	"blog-viewstats/config"
	"blog-viewstats/metrics"
	"blog-viewstats/models"
)

// Options configures a Store.
type Options struct {
	// Consistency is one of the config.Consistency* modes.
	Consistency string
	// BatchSize caps how many queued views share one write in queue mode.
	BatchSize  int
	QueueDepth int
	// IOTimeout bounds every backend call.
	IOTimeout time.Duration
	TopPaths  int
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Store owns the aggregate document and decides how concurrent recorded
// views are serialized:
//
//   - none: each view runs its own unserialized read-modify-write. Two
//     concurrent views can read the same document and one increment is
//     lost. Counts are approximate.
//   - mutex: a process-local lock guards the read-modify-write.
//   - queue: a single writer goroutine applies queued views in batches.
//   - transaction: the backend's own atomic update (redis, sqlite, bolt).
//
// Only mutex, queue and transaction give exact counts, and mutex and
// queue only within one process.
type Store struct {
	backend Backend
	opts    Options

	mu      sync.Mutex
	tx      Transactor
	batcher *batcher.CountBatcher
}

// New wraps backend in a Store.
func New(backend Backend, opts Options) (*Store, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = 3 * time.Second
	}
	if opts.Consistency == "" {
		opts.Consistency = config.ConsistencyMutex
	}

	s := &Store{backend: backend, opts: opts}

	switch opts.Consistency {
	case config.ConsistencyNone, config.ConsistencyMutex:
	case config.ConsistencyQueue:
		s.batcher = batcher.NewCountBatcher(opts.BatchSize, opts.QueueDepth, s.flush)
		s.batcher.Start()
	case config.ConsistencyTransaction:
		tx, ok := backend.(Transactor)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoTransactions, backend.Name())
		}
		s.tx = tx
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConsistency, opts.Consistency)
	}

	return s, nil
}

// Backend returns the name of the persistence backend.
func (s *Store) Backend() string { return s.backend.Name() }

// Consistency returns the active consistency mode.
func (s *Store) Consistency() string { return s.opts.Consistency }

func (s *Store) today() string {
	return s.opts.Now().UTC().Format(models.DayLayout)
}

func (s *Store) ioContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.IOTimeout)
}

func normalizeRecord(rec models.ViewRecord) (models.ViewRecord, error) {
	if rec.Path == "" {
		return rec, ErrEmptyPath
	}
	if !rec.Device.Valid() {
		rec.Device = models.DeviceUnknown
	}
	rec.Country = models.NormalizeCountry(rec.Country)
	return rec, nil
}

// RecordView folds one visit into all four counters, persists the document
// and returns the new count for rec.Path. In queue mode caller cancellation
// is ignored and only IOTimeout bounds the wait, so a view handed to the
// writer is never reported as failed while it is still being written.
func (s *Store) RecordView(ctx context.Context, rec models.ViewRecord) (int64, error) {
	rec, err := normalizeRecord(rec)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var views int64
	switch s.opts.Consistency {
	case config.ConsistencyQueue:
		views, err = s.enqueue(ctx, rec)
	case config.ConsistencyTransaction:
		views, err = s.recordTx(ctx, rec)
	case config.ConsistencyMutex:
		s.mu.Lock()
		views, err = s.recordRMW(ctx, rec)
		s.mu.Unlock()
	default:
		views, err = s.recordRMW(ctx, rec)
	}
	metrics.ObserveStore(s.Backend(), "record", start, err)
	if err != nil {
		return 0, err
	}

	metrics.ViewsRecorded.WithLabelValues(string(rec.Device)).Inc()
	return views, nil
}

func (s *Store) enqueue(ctx context.Context, rec models.ViewRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.IOTimeout)
	defer cancel()
	return s.batcher.Enqueue(ctx, batcher.ViewEvent{Record: rec})
}

func (s *Store) recordRMW(ctx context.Context, rec models.ViewRecord) (int64, error) {
	ctx, cancel := s.ioContext(ctx)
	defer cancel()

	state, err := s.backend.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read aggregate: %w", err)
	}
	views := state.Apply(rec, s.today())
	if err := s.backend.Write(ctx, state); err != nil {
		return 0, fmt.Errorf("write aggregate: %w", err)
	}
	return views, nil
}

func (s *Store) recordTx(ctx context.Context, rec models.ViewRecord) (int64, error) {
	ctx, cancel := s.ioContext(ctx)
	defer cancel()

	var views int64
	err := s.tx.Update(ctx, func(state *models.AggregateState) error {
		views = state.Apply(rec, s.today())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("update aggregate: %w", err)
	}
	return views, nil
}

// flush is the single writer's batch write.
func (s *Store) flush(events []batcher.ViewEvent) ([]int64, error) {
	ctx, cancel := s.ioContext(context.Background())
	defer cancel()

	state, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read aggregate: %w", err)
	}
	day := s.today()
	counts := make([]int64, len(events))
	for i, evt := range events {
		counts[i] = state.Apply(evt.Record, day)
	}
	if err := s.backend.Write(ctx, state); err != nil {
		return nil, fmt.Errorf("write aggregate: %w", err)
	}
	return counts, nil
}

// State returns the current document.
func (s *Store) State(ctx context.Context) (*models.AggregateState, error) {
	ctx, cancel := s.ioContext(ctx)
	defer cancel()

	start := time.Now()
	state, err := s.backend.Read(ctx)
	metrics.ObserveStore(s.Backend(), "read", start, err)
	if err != nil {
		return nil, fmt.Errorf("read aggregate: %w", err)
	}
	return state, nil
}

// Views returns the count for path, or 0 when it was never recorded.
func (s *Store) Views(ctx context.Context, path string) (int64, error) {
	state, err := s.State(ctx)
	if err != nil {
		return 0, err
	}
	return state.Views[path], nil
}

// Summary returns totals, rolling windows and sorted breakdowns.
func (s *Store) Summary(ctx context.Context) (*models.Summary, error) {
	state, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return BuildSummary(state, s.opts.Now(), s.opts.TopPaths), nil
}

// Ping checks that the backend can be read.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.State(ctx)
	return err
}

// Close stops the writer, if any, and closes the backend.
func (s *Store) Close() error {
	if s.batcher != nil {
		s.batcher.Stop()
	}
	return s.backend.Close()
}
