package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Policy struct {
	Attempts int
	// Backoff is multiplied by the attempt number before each new attempt.
	Backoff time.Duration
	// Timeout bounds a single attempt. Zero means no bound.
	Timeout time.Duration
}

// linearBackOff waits base, 2*base, 3*base... between attempts.
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func (p Policy) newBackOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff > 0 {
		b = &linearBackOff{base: p.Backoff}
	}

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, the attempts are
// exhausted or ctx is done. A permanent error is returned unwrapped.
func Do(ctx context.Context, policy Policy, fn func(context.Context) error) error {
	return backoff.Retry(func() error {
		return call(ctx, policy.Timeout, fn)
	}, policy.newBackOff(ctx))
}

func call(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return fn(ctx)
}
