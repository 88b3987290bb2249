package tasks

import (
	"context"
	"time"

	"vkmod/internal/logger"
	"vkmod/internal/loop"
	"vkmod/internal/models"

	"go.uber.org/zap"
)

type ScrapeAllEnqueuer interface {
	EnqueueScrapeAll(ctx context.Context) ([]*models.Task, error)
}

// Scheduler периодически ставит сбор всех активных авторов.
// Интервал читается перед каждым ожиданием, так что смена настройки подхватывается без рестарта.
type Scheduler struct {
	enqueuer ScrapeAllEnqueuer
	interval func(ctx context.Context) time.Duration
	fallback time.Duration
}

func NewScheduler(enqueuer ScrapeAllEnqueuer, interval func(ctx context.Context) time.Duration, fallback time.Duration) *Scheduler {
	if fallback <= 0 {
		fallback = 30 * time.Minute
	}
	return &Scheduler{enqueuer: enqueuer, interval: interval, fallback: fallback}
}

func (s *Scheduler) next(ctx context.Context) time.Duration {
	if s.interval == nil {
		return s.fallback
	}
	if d := s.interval(ctx); d > 0 {
		return d
	}
	return s.fallback
}

// Tick делает один проход планировщика.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	tasks, err := s.enqueuer.EnqueueScrapeAll(ctx)
	return len(tasks), err
}

// Run работает до отмены ctx. Первый проход выполняется сразу.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Log.Info("Планировщик сбора запущен", zap.Duration("interval", s.next(ctx)))
	runs, _ := loop.Start(ctx, 0, func(ctx context.Context, runs int) (int, loop.Next) {
		if _, err := s.Tick(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("Планировщик: не удалось поставить сбор", zap.Error(err))
		}
		return runs + 1, loop.Continue(s.next(ctx))
	}, loop.WithTimeout(time.Minute))
	logger.Log.Info("Планировщик остановлен", zap.Int("runs", runs))
}
