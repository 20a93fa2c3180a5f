package queue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueueProcessing(t *testing.T) {
	w := NewWorker(1)
	w.Start(1)
	defer w.Stop()

	var processed atomic.Bool
	assert.True(t, w.Submit(func() { processed.Store(true) }))

	assert.Eventually(t, processed.Load, time.Second, 5*time.Millisecond)
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	w := NewWorker(10)

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		assert.True(t, w.Submit(func() { count.Add(1) }))
	}

	w.Start(2)
	w.Stop()

	assert.Equal(t, int32(5), count.Load())
}

func TestSubmitAfterStop(t *testing.T) {
	w := NewWorker(1)
	w.Start(1)
	w.Stop()

	assert.False(t, w.Submit(func() {}))
}

func TestSubmitDropsWhenFull(t *testing.T) {
	w := NewWorker(1)

	assert.True(t, w.Submit(func() {}))
	assert.False(t, w.Submit(func() {}))

	w.Start(1)
	w.Stop()
}
