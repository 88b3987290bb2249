// Package retry — ограниченный экспоненциальный backoff.
package retry

import (
	"context"
	"time"
)

type Backoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay возвращает паузу перед попыткой attempt (с нуля): Base·2^attempt, но не больше Max.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}

// Sleep ждёт d или отмены контекста.
func Sleep(ctx context.Context, d time.Duration) error {
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

// Do выполняет fn до maxRetries+1 раз, пока retryable(err) возвращает true.
// onRetry (может быть nil) вызывается перед каждой паузой.
func Do(
	ctx context.Context,
	maxRetries int,
	b Backoff,
	retryable func(error) bool,
	onRetry func(attempt int, delay time.Duration, err error),
	fn func() error,
) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || attempt >= maxRetries || !retryable(err) {
			return err
		}
		delay := b.Delay(attempt)
		if onRetry != nil {
			onRetry(attempt+1, delay, err)
		}
		if serr := Sleep(ctx, delay); serr != nil {
			return err
		}
	}
}
