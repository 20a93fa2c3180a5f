package store

import "errors"

var (
	// ErrEmptyPath is returned by RecordView for an empty path. Callers are
	// expected to reject such input before reaching the store.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrNoTransactions is returned when the transaction consistency mode is
	// requested for a backend without a native atomic update.
	ErrNoTransactions = errors.New("backend does not support transactions")

	ErrUnknownConsistency = errors.New("unknown consistency mode")
	ErrUnknownBackend     = errors.New("unknown store backend")
)
