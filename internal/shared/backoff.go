package shared

import (
	"context"
	"time"
)

type BackoffConfig struct {
	Initial     time.Duration
	MaxAttempts int
	MaxDelay    time.Duration
}

func (b BackoffConfig) Normalize() BackoffConfig {
	if b.Initial <= 0 {
		b.Initial = 100 * time.Millisecond
	}
	if b.MaxAttempts <= 0 {
		b.MaxAttempts = 5
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = 2 * time.Second
	}
	return b
}

// Next doubles d up to MaxDelay.
func (b BackoffConfig) Next(d time.Duration) time.Duration {
	return min(d*2, b.MaxDelay)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
