package tasklist

import (
	"context"
	"math/rand/v2"
	"time"
)

// BackoffConfig bounds the delay between save retries.
type BackoffConfig struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultBackoff returns the delays used when none are configured.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// Delay computes the wait before retry attempt using exponential backoff
// with full jitter. attempt is 1-based (1 => up to BaseDelay). jitter
// returns a value in [0, n); nil uses math/rand.
func (cfg BackoffConfig) Delay(attempt int, jitter func(n int64) int64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBackoff().BaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}

	delay := cfg.MaxDelay
	if attempt-1 < 32 {
		if d := cfg.BaseDelay << (attempt - 1); d > 0 && d < cfg.MaxDelay {
			delay = d
		}
	}

	if jitter == nil {
		jitter = rand.Int64N
	}
	return time.Duration(jitter(int64(delay) + 1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
