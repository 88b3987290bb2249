package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStart_CountsToTen(t *testing.T) {
	got, err := Start(context.Background(), 1, func(_ context.Context, v int) (int, Next) {
		v++
		if v >= 10 {
			return v, Break(nil)
		}
		return v, Continue(0)
	})
	require.NoError(t, err)
	require.Equal(t, 10, got)
}

func TestStart_BreakWithError(t *testing.T) {
	boom := errors.New("boom")
	got, err := Start(context.Background(), "a", func(_ context.Context, v string) (string, Next) {
		return v + "b", Break(boom)
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, "ab", got)
}

func TestStart_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Start(ctx, 0, func(_ context.Context, v int) (int, Next) {
			calls++
			return v, Continue(time.Hour)
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("цикл не остановился после отмены контекста")
	}
	require.Equal(t, 1, calls)
}

func TestStart_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	v, err := Start(ctx, 7, func(_ context.Context, v int) (int, Next) {
		called = true
		return v, Break(nil)
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 7, v)
	require.False(t, called)
}

func TestWithTimeout(t *testing.T) {
	_, err := Start(context.Background(), 0, func(ctx context.Context, v int) (int, Next) {
		<-ctx.Done()
		return v, Break(ctx.Err())
	}, WithTimeout(10*time.Millisecond))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithRecover(t *testing.T) {
	var recovered []any
	runs := 0
	got, err := Start(context.Background(), 0, func(_ context.Context, v int) (int, Next) {
		runs++
		if runs == 1 {
			panic("first run")
		}
		return v + runs, Break(nil)
	}, WithTimeout(time.Second), WithRecover(func(r any) Next {
		recovered = append(recovered, r)
		return Continue(0)
	}))
	require.NoError(t, err)
	require.Equal(t, 2, got, "после паники задача получает прежнее состояние")
	require.Equal(t, []any{"first run"}, recovered)
}
