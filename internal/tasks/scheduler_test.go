package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"vkmod/internal/models"

	"github.com/stretchr/testify/require"
)

type countingEnqueuer struct {
	calls atomic.Int32
	err   error
}

func (c *countingEnqueuer) EnqueueScrapeAll(context.Context) ([]*models.Task, error) {
	c.calls.Add(1)
	return []*models.Task{{ID: "x"}}, c.err
}

func TestScheduler_RunsImmediatelyAndRepeats(t *testing.T) {
	enq := &countingEnqueuer{}
	s := NewScheduler(enq, func(context.Context) time.Duration { return 10 * time.Millisecond }, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return enq.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("планировщик не остановился")
	}
}

func TestScheduler_IntervalFallback(t *testing.T) {
	s := NewScheduler(&countingEnqueuer{}, func(context.Context) time.Duration { return 0 }, 45*time.Minute)
	require.Equal(t, 45*time.Minute, s.next(context.Background()))

	s = NewScheduler(&countingEnqueuer{}, nil, 0)
	require.Equal(t, 30*time.Minute, s.next(context.Background()))
}

func TestScheduler_ErrorDoesNotStop(t *testing.T) {
	enq := &countingEnqueuer{err: errors.New("db down")}
	s := NewScheduler(enq, func(context.Context) time.Duration { return time.Millisecond }, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s.Run(ctx)
	require.GreaterOrEqual(t, enq.calls.Load(), int32(2))
}

func TestScheduler_Tick(t *testing.T) {
	s := NewScheduler(&countingEnqueuer{}, nil, time.Minute)
	n, err := s.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
