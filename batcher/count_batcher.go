package batcher

import (
	"context"
	"errors"
	"sync"

	"blog-viewstats/metrics"
)

// ErrStopped is returned by Enqueue once the batcher has been stopped.
var ErrStopped = errors.New("batcher stopped")

// CountBatcher is the single writer of the aggregate document. Callers
// enqueue events; the writer goroutine takes whatever is waiting, up to
// threshold events, and hands them to flush as one batch.
type CountBatcher struct {
	events    chan ViewEvent
	threshold int
	flush     FlushFunc

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewCountBatcher returns a CountBatcher that flushes at most threshold
// events at a time. depth bounds how many callers may wait in line.
func NewCountBatcher(threshold, depth int, flush FlushFunc) *CountBatcher {
	if threshold < 1 {
		threshold = 1
	}
	if depth < 1 {
		depth = 1
	}
	return &CountBatcher{
		events:    make(chan ViewEvent, depth),
		threshold: threshold,
		flush:     flush,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the writer goroutine. Call Stop() to end it.
func (b *CountBatcher) Start() {
	go b.run()
}

// Stop stops accepting events, flushes the ones already queued and waits
// for the writer to exit.
func (b *CountBatcher) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	<-b.done
}

// Enqueue hands evt to the writer and waits for its result.
func (b *CountBatcher) Enqueue(ctx context.Context, evt ViewEvent) (int64, error) {
	evt.result = make(chan Result, 1)

	select {
	case <-b.stopCh:
		return 0, ErrStopped
	default:
	}

	select {
	case b.events <- evt:
	case <-b.stopCh:
		return 0, ErrStopped
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-evt.result:
		return res.Views, res.Err
	case <-b.done:
		select {
		case res := <-evt.result:
			return res.Views, res.Err
		default:
			return 0, ErrStopped
		}
	case <-ctx.Done():
		// The view may still be written; the caller just stops waiting.
		return 0, ctx.Err()
	}
}

func (b *CountBatcher) run() {
	defer close(b.done)
	batch := make([]ViewEvent, 0, b.threshold)

	for {
		select {
		case evt := <-b.events:
			batch = append(batch[:0], evt)
			batch = b.fill(batch)
			b.flushBatch(batch)
		case <-b.stopCh:
			for {
				batch = b.fill(batch[:0])
				if len(batch) == 0 {
					return
				}
				b.flushBatch(batch)
			}
		}
	}
}

// fill appends waiting events without blocking until threshold is reached.
func (b *CountBatcher) fill(batch []ViewEvent) []ViewEvent {
	for len(batch) < b.threshold {
		select {
		case evt := <-b.events:
			batch = append(batch, evt)
		default:
			return batch
		}
	}
	return batch
}

func (b *CountBatcher) flushBatch(batch []ViewEvent) {
	if len(batch) == 0 {
		return
	}
	metrics.BatchSize.Observe(float64(len(batch)))

	counts, err := b.flush(batch)
	if err == nil && len(counts) != len(batch) {
		err = errors.New("flush returned mismatched counts")
	}
	for i, evt := range batch {
		if err != nil {
			evt.result <- Result{Err: err}
			continue
		}
		evt.result <- Result{Views: counts[i]}
	}
}
