package utils

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// maxBackoff caps the wait between two attempts.
const maxBackoff = 2 * time.Second

// IsRecoverableError reports whether err looks like a transient network failure.
func IsRecoverableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "temporarily unavailable")
}

// RetryWithExponentialBackoff runs operation until it succeeds, returns an
// error that retryable rejects, ctx is done, or maxRetries attempts are spent.
// A nil retryable falls back to IsRecoverableError.
func RetryWithExponentialBackoff(ctx context.Context, operation func() error, retryable func(error) bool, maxRetries int, initialDelay time.Duration) error {
	if retryable == nil {
		retryable = IsRecoverableError
	}
	delay := initialDelay
	var err error

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if !retryable(err) || i == maxRetries-1 {
			break
		}

		log.Debug().Err(err).Int("attempt", i+1).Dur("delay", delay).Msg("operation failed, retrying")

		// Apply jitter: add a random duration between 0 and half the current delay.
		wait := delay
		if half := int64(delay / 2); half > 0 {
			wait += time.Duration(rand.Int63n(half))
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		if delay *= 2; delay > maxBackoff {
			delay = maxBackoff
		}
	}

	if !retryable(err) {
		return err
	}
	return fmt.Errorf("operation failed after %d attempts: %w", maxRetries, err)
}
