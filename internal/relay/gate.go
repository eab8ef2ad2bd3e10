package relay

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// WaitPolicy bounds the readiness wait
type WaitPolicy struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultWaitPolicy polls every 500ms for up to 10s
func DefaultWaitPolicy() WaitPolicy {
	return WaitPolicy{
		PollInterval: 500 * time.Millisecond,
		Timeout:      10 * time.Second,
	}
}

func (p WaitPolicy) normalized() WaitPolicy {
	def := DefaultWaitPolicy()
	if p.PollInterval <= 0 {
		p.PollInterval = def.PollInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	return p
}

// Await returns the first value isReady reports as ready.
//
// A value ready on the first check is returned without creating any timer.
// Otherwise isReady is re-evaluated every PollInterval until it succeeds, the
// Timeout elapses (*TimeoutError, checked once more at the deadline) or ctx is
// done. The ticker and the deadline timer are stopped on every outcome.
func Await[T any](ctx context.Context, clk clock.Clock, policy WaitPolicy, isReady func() (T, bool)) (T, error) {
	if v, ok := isReady(); ok {
		return v, nil
	}
	if clk == nil {
		clk = clock.New()
	}
	policy = policy.normalized()

	start := clk.Now()
	ticker := clk.Ticker(policy.PollInterval)
	defer ticker.Stop()
	deadline := clk.Timer(policy.Timeout)
	defer deadline.Stop()

	var zero T
	polls := 0
	for {
		select {
		case <-ticker.C:
			polls++
			if v, ok := isReady(); ok {
				return v, nil
			}
		case <-deadline.C:
			if v, ok := isReady(); ok {
				return v, nil
			}
			return zero, &TimeoutError{
				Timeout: policy.Timeout,
				Waited:  clk.Since(start),
				Polls:   polls,
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
