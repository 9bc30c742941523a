package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDo_SucceedAfterFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3, Backoff: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3}, func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})

	require.EqualError(t, err, "down")
	require.Equal(t, 3, calls)
}

func TestDo_Permanent(t *testing.T) {
	notFound := errors.New("not found")
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3}, func(ctx context.Context) error {
		calls++
		return Permanent(notFound)
	})

	require.ErrorIs(t, err, notFound)
	require.Equal(t, 1, calls)
}

func TestDo_AttemptTimeout(t *testing.T) {
	err := Do(context.Background(), Policy{Attempts: 2, Timeout: 10 * time.Millisecond}, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{Attempts: 3, Backoff: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("down")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestLinearBackOff(t *testing.T) {
	b := &linearBackOff{base: time.Second}
	require.Equal(t, time.Second, b.NextBackOff())
	require.Equal(t, 2*time.Second, b.NextBackOff())
	require.Equal(t, 3*time.Second, b.NextBackOff())

	b.Reset()
	require.Equal(t, time.Second, b.NextBackOff())
}

func TestDo_SingleAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func(ctx context.Context) error {
		calls++
		return errors.New("down")
	})

	require.EqualError(t, err, "down")
	require.Equal(t, 1, calls)
}
