// Package retry wraps fallible operations with bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Policy retries an operation up to MaxRetries times after the initial
// attempt, sleeping BaseDelay * 2^attempt between attempts.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do runs op until it succeeds or retries are exhausted. The last error is
// returned unchanged; the policy delays failures, it never swallows them.
// The inter-attempt wait is cancellable: if ctx is done, Do returns ctx.Err()
// immediately instead of finishing the pending backoff.
func (p Policy) Do(ctx context.Context, logger zerolog.Logger, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxRetries {
			break
		}

		delay := p.BaseDelay * (1 << attempt)
		logger.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("Attempt failed, backing off before retry")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
