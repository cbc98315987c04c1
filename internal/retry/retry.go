package retry

import (
	"context"
	"log/slog"
	"time"
)

// Options controls a bounded retry loop. Delay is fixed between
// attempts; this path serves a low-QPS scheduled job, so jitter and
// exponential backoff buy nothing.
type Options struct {
	Attempts int
	Delay    time.Duration
	Label    string
}

// Do runs op up to opts.Attempts times, sleeping opts.Delay between
// failures. On exhaustion it returns the zero value and the last
// error; callers in the aggregation path treat that as an empty,
// non-fatal result. Context cancellation cuts the wait short.
func Do[T any](ctx context.Context, op func() (T, error), opts Options) (T, error) {
	var zero T

	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		lastErr = err

		slog.Warn("retryable operation failed",
			"label", opts.Label,
			"attempt", attempt,
			"max_attempts", opts.Attempts,
			"error", err,
		)

		if attempt == opts.Attempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(opts.Delay):
		}
	}

	return zero, lastErr
}
