// Package tasks — очередь фоновых задач поверх таблицы tasks: пул воркеров и планировщик.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/loop"
	"vkmod/internal/models"
	"vkmod/internal/repository"
	"vkmod/internal/retry"
	"vkmod/internal/vk"

	"go.uber.org/zap"
)

// Queue — хранилище задач (repository.TaskRepository).
type Queue interface {
	Claim(ctx context.Context) (*models.Task, error)
	MarkSucceeded(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id string, lastErr string) error
	Release(ctx context.Context, id string, lastErr string) error
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ErrorReporter interface {
	Report(ctx context.Context, source, code, message string, details map[string]any) (*models.ErrorReport, error)
}

type Handler func(ctx context.Context, t *models.Task) error

// DefaultBackoff — пауза перед повтором задачи: 2s·2^n, не больше 10 минут.
var DefaultBackoff = retry.Backoff{Base: 2 * time.Second, Max: 10 * time.Minute}

// StaleAfter — через сколько задача в running считается брошенной.
const StaleAfter = 30 * time.Minute

type Options struct {
	Workers     int
	Poll        time.Duration
	TaskTimeout time.Duration
	Backoff     retry.Backoff
}

type Pool struct {
	queue    Queue
	reporter ErrorReporter
	opts     Options
	handlers map[string]Handler
	now      func() time.Time

	wg sync.WaitGroup
}

func NewPool(queue Queue, reporter ErrorReporter, opts Options) *Pool {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Poll <= 0 {
		opts.Poll = 2 * time.Second
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 15 * time.Minute
	}
	if opts.Backoff.Base <= 0 {
		opts.Backoff = DefaultBackoff
	}
	return &Pool{
		queue:    queue,
		reporter: reporter,
		opts:     opts,
		handlers: map[string]Handler{},
		now:      time.Now,
	}
}

// Handle регистрирует обработчик типа задачи. Вызывать до Start.
func (p *Pool) Handle(taskType string, h Handler) {
	p.handlers[taskType] = h
}

// Start возвращает в очередь зависшие задачи и запускает воркеры. Останавливаются отменой ctx.
func (p *Pool) Start(ctx context.Context) {
	if n, err := p.queue.RequeueStale(ctx, StaleAfter); err != nil {
		logger.Log.Error("Не удалось вернуть зависшие задачи", zap.Error(err))
	} else if n > 0 {
		logger.Log.Warn("Зависшие задачи возвращены в очередь", zap.Int64("count", n))
	}

	logger.Log.Info("Запуск воркеров очереди", zap.Int("workers", p.opts.Workers), zap.Duration("poll", p.opts.Poll))
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			p.runWorker(ctx, worker)
		}(i + 1)
	}
}

// Wait блокируется, пока все воркеры не завершатся.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, worker int) {
	log := logger.Log.With(zap.Int("worker", worker))
	processed, _ := loop.Start(ctx, 0, func(ctx context.Context, done int) (int, loop.Next) {
		ok, err := p.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return done, loop.Break(nil)
			}
			log.Error("Ошибка очереди задач", zap.Error(err))
			return done, loop.Continue(p.opts.Poll)
		}
		if !ok {
			return done, loop.Continue(p.opts.Poll)
		}
		return done + 1, loop.Continue(0)
	}, loop.WithRecover(func(r any) loop.Next {
		log.Error("Паника в воркере", zap.Any("panic", r))
		return loop.Continue(p.opts.Poll)
	}))
	log.Info("Воркер остановлен", zap.Int("processed", processed))
}

// RunOnce забирает одну задачу и выполняет её. false, если очередь пуста.
func (p *Pool) RunOnce(ctx context.Context) (bool, error) {
	t, err := p.queue.Claim(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	p.execute(ctx, t)
	return true, nil
}

func (p *Pool) execute(ctx context.Context, t *models.Task) {
	log := logger.Log.With(zap.String("task_id", t.ID), zap.String("type", t.Type), zap.Int("attempt", t.Attempts))
	start := p.now()

	err := p.invoke(ctx, t)

	// Статус задачи пишем и после отмены ctx, иначе она останется в running до RequeueStale.
	bg := context.WithoutCancel(ctx)

	if err == nil {
		if err := p.queue.MarkSucceeded(bg, t.ID); err != nil {
			log.Error("Не удалось отметить задачу выполненной", zap.Error(err))
			return
		}
		log.Info("Задача выполнена", zap.Duration("duration", p.now().Sub(start)))
		return
	}

	if ctx.Err() != nil {
		// Воркер останавливается: прерванный запуск не считается попыткой.
		if rerr := p.queue.Release(bg, t.ID, "прервано остановкой воркера"); rerr != nil {
			log.Error("Не удалось вернуть прерванную задачу в очередь", zap.Error(rerr))
			return
		}
		log.Warn("Задача прервана остановкой воркера и возвращена в очередь", zap.Error(err))
		return
	}

	if Retryable(err) && t.Attempts < t.MaxAttempts {
		delay := p.opts.Backoff.Delay(t.Attempts - 1)
		if rerr := p.queue.Reschedule(bg, t.ID, p.now().Add(delay), err.Error()); rerr != nil {
			log.Error("Не удалось перепланировать задачу", zap.Error(rerr))
			return
		}
		log.Warn("Задача завершилась ошибкой, повтор запланирован", zap.Error(err), zap.Duration("delay", delay))
		return
	}

	if ferr := p.queue.MarkFailed(bg, t.ID, err.Error()); ferr != nil {
		log.Error("Не удалось отметить задачу проваленной", zap.Error(ferr))
	}
	log.Error("Задача провалена", zap.Error(err))

	if p.reporter == nil {
		return
	}
	source := models.ErrorSourceScraper
	if vk.IsVKError(err) {
		source = models.ErrorSourceVK
	}
	details := map[string]any{
		"task_id":  t.ID,
		"type":     t.Type,
		"attempts": t.Attempts,
	}
	var payload map[string]any
	if json.Unmarshal(t.Payload, &payload) == nil {
		for k, v := range payload {
			details[k] = v
		}
	}
	if _, rerr := p.reporter.Report(bg, source, errorCode(t.Type, err), err.Error(), details); rerr != nil {
		log.Error("Не удалось сохранить отчёт об ошибке задачи", zap.Error(rerr))
	}
}

func (p *Pool) invoke(ctx context.Context, t *models.Task) (err error) {
	h, ok := p.handlers[t.Type]
	if !ok {
		return Permanent(fmt.Errorf("нет обработчика для задачи %q", t.Type))
	}
	ctx, cancel := context.WithTimeout(ctx, p.opts.TaskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = Permanent(fmt.Errorf("паника в обработчике %s: %v", t.Type, r))
		}
	}()
	return h(ctx, t)
}
