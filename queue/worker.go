package queue

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Worker runs queued side-effect tasks (live feed publishing) off the
// request path. A full queue drops the task instead of blocking the caller.
type Worker struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewWorker returns a Worker with a buffered queue of size depth.
func NewWorker(depth int) *Worker {
	if depth < 1 {
		depth = 1
	}
	return &Worker{tasks: make(chan func(), depth)}
}

// Start launches n goroutines that process queued tasks.
func (w *Worker) Start(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for task := range w.tasks {
				task()
			}
		}()
	}
}

// Submit enqueues task and reports whether it was accepted.
func (w *Worker) Submit(task func()) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.tasks <- task:
		return true
	default:
		log.Warn().Msg("task queue full, dropping task")
		return false
	}
}

// Stop closes the queue and waits for queued tasks to finish.
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.tasks)
		w.mu.Unlock()
	})
	w.wg.Wait()
}
