package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond}

	err := p.Do(context.Background(), zerolog.Nop(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond}

	err := p.Do(context.Background(), zerolog.Nop(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastErrorUnchanged(t *testing.T) {
	lastErr := errors.New("still broken")
	calls := 0
	p := Policy{MaxRetries: 2, BaseDelay: time.Millisecond}

	err := p.Do(context.Background(), zerolog.Nop(), func() error {
		calls++
		return lastErr
	})

	assert.Equal(t, lastErr, err, "the caller sees the operation's own error")
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
}

func TestDoZeroRetriesMeansSingleAttempt(t *testing.T) {
	calls := 0
	p := Policy{MaxRetries: 0, BaseDelay: time.Millisecond}

	err := p.Do(context.Background(), zerolog.Nop(), func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := Policy{MaxRetries: 5, BaseDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, zerolog.Nop(), func() error {
			calls++
			return errors.New("transient")
		})
	}()

	// Let the first attempt run, then cancel mid-backoff.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls, "the pending backoff must not complete")
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoCanceledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	p := Policy{MaxRetries: 3, BaseDelay: time.Millisecond}

	err := p.Do(ctx, zerolog.Nop(), func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
