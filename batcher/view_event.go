package batcher

import "blog-viewstats/models"

// ViewEvent is one pending view waiting for the writer.
type ViewEvent struct {
	Record models.ViewRecord
	result chan Result
}

// Result is what the writer reports back for a single event.
type Result struct {
	Views int64
	Err   error
}

// FlushFunc persists events in one write and returns the resulting path
// count of each event, in order. A non-nil error fails every event.
type FlushFunc func(events []ViewEvent) ([]int64, error)
