package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: time.Second}
	require.Equal(t, 100*time.Millisecond, b.Delay(0))
	require.Equal(t, 200*time.Millisecond, b.Delay(1))
	require.Equal(t, 800*time.Millisecond, b.Delay(3))
	require.Equal(t, time.Second, b.Delay(4))
	require.Equal(t, time.Second, b.Delay(60), "без переполнения на больших попытках")
	require.Equal(t, 100*time.Millisecond, b.Delay(-1))
}

var errTemporary = errors.New("temporary")

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	var retried []int
	err := Do(context.Background(), 5, Backoff{Base: time.Millisecond, Max: 2 * time.Millisecond},
		func(err error) bool { return errors.Is(err, errTemporary) },
		func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) },
		func() error {
			calls++
			if calls < 3 {
				return errTemporary
			}
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	err := Do(context.Background(), 5, Backoff{Base: time.Millisecond},
		func(err error) bool { return errors.Is(err, errTemporary) }, nil,
		func() error { calls++; return permanent })
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDo_BoundedAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, Backoff{Base: time.Millisecond},
		func(error) bool { return true }, nil,
		func() error { calls++; return errTemporary })
	require.ErrorIs(t, err, errTemporary)
	require.Equal(t, 3, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, 5, Backoff{Base: time.Hour},
		func(error) bool { return true }, nil,
		func() error { calls++; return errTemporary })
	require.ErrorIs(t, err, errTemporary)
	require.Equal(t, 1, calls)
}
