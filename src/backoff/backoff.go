// Package backoff implements a fixed-delay bounded retry policy.
package backoff

import (
	"context"
	"time"
)

// Policy retries an operation up to MaxAttempts times, sleeping Delay between
// attempts. The zero value performs a single attempt with no delay.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// sleep is swapped out in tests
	sleep func(context.Context, time.Duration) error
}

// New returns a Policy with the given bounds.
func New(maxAttempts int, delay time.Duration) *Policy {
	return &Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
	}
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last error from op is returned when all attempts
// fail.
func (p *Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if serr := sleep(ctx, p.Delay); serr != nil {
				return serr
			}
		}

		if err = op(); err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
