// Package loop — повторяющиеся фоновые задачи (воркеры очереди, планировщик).
//
// Задача возвращает новое состояние и решение: Continue(пауза) или Break(err).
package loop

import (
	"context"
	"fmt"
	"time"
)

type Next struct {
	err      error
	quit     bool
	interval time.Duration
}

func (n Next) String() string {
	switch {
	case n.err != nil:
		return fmt.Sprintf("break: %v", n.err)
	case n.quit:
		return "break"
	}
	return fmt.Sprintf("continue after %s", n.interval)
}

// Continue запускает задачу ещё раз через interval. Next{} равен Continue(0).
func Continue(interval time.Duration) Next {
	return Next{interval: interval}
}

// Break останавливает цикл. err == nil означает штатный выход.
func Break(err error) Next {
	return Next{quit: true, err: err}
}

type Task[T any] func(ctx context.Context, state T) (T, Next)

type config struct {
	ctx      context.Context
	deferred func()
	onPanic  func(any) Next
}

type Option func(*config) *config

// WithTimeout ограничивает каждый отдельный запуск задачи.
func WithTimeout(d time.Duration) Option {
	return func(c *config) *config {
		ctx, cancel := context.WithTimeout(c.ctx, d)
		prev := c.deferred
		return &config{
			ctx:     ctx,
			onPanic: c.onPanic,
			deferred: func() {
				cancel()
				if prev != nil {
					prev()
				}
			},
		}
	}
}

// WithRecover превращает панику в задаче в решение handler'а, цикл при этом не падает.
func WithRecover(handler func(recovered any) Next) Option {
	return func(c *config) *config {
		cp := *c
		cp.onPanic = handler
		return &cp
	}
}

// Start крутит task, пока она не вернёт Break или не отменится ctx.
// Возвращает последнее состояние и ошибку из Break (или ctx.Err()).
func Start[T any](ctx context.Context, init T, task Task[T], opts ...Option) (T, error) {
	if err := ctx.Err(); err != nil {
		return init, err
	}

	state := init
	for {
		c := &config{ctx: ctx}
		for _, opt := range opts {
			c = opt(c)
		}

		v, next := run(c, state, task)
		if next.err != nil {
			return v, next.err
		}
		if next.quit {
			return v, nil
		}
		state = v

		timer := time.NewTimer(next.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return state, ctx.Err()
		case <-timer.C:
		}
	}
}

func run[T any](c *config, state T, task Task[T]) (v T, next Next) {
	if c.deferred != nil {
		defer c.deferred()
	}
	if c.onPanic != nil {
		defer func() {
			if r := recover(); r != nil {
				v, next = state, c.onPanic(r)
			}
		}()
	}
	return task(c.ctx, state)
}
