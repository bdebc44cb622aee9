package utils

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy re-runs a failed call after Delay, growing the delay by
// Multiplier up to MaxDelay. MaxAttempts 0 means retry until the context ends.
type RetryPolicy struct {
	Delay       time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int
}

// DefaultRetryPolicy waits a fixed 10 seconds and never gives up.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Delay: 10 * time.Second, Multiplier: 1}
}

// Backoff returns the wait before retry number attempt (0-based). A growing
// wait is capped at MaxDelay, or at the longest representable duration when
// MaxDelay is unset, so it never turns negative.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 || p.Multiplier <= 1 {
		return p.Delay
	}
	limit := float64(math.MaxInt64)
	if p.MaxDelay > 0 {
		limit = float64(p.MaxDelay)
	}
	wait := float64(p.Delay) * math.Pow(p.Multiplier, float64(attempt))
	if wait >= limit || math.IsInf(wait, 0) || math.IsNaN(wait) {
		if p.MaxDelay > 0 {
			return p.MaxDelay
		}
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(wait)
}

// Do runs fn until it succeeds, returns an error retryable rejects, runs out
// of attempts or ctx is done. A nil retryable retries every error.
func (p RetryPolicy) Do(ctx context.Context, op string, retryable func(error) bool, fn func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if p.MaxAttempts > 0 && attempt+1 >= p.MaxAttempts {
			return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt+1, err)
		}

		wait := p.Backoff(attempt)
		logrus.WithFields(logrus.Fields{
			"op":      op,
			"attempt": attempt + 1,
			"wait":    wait,
		}).WithError(err).Warn("returned an error, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w (last error: %v)", op, ctx.Err(), err)
		case <-timer.C:
		}
	}
}
