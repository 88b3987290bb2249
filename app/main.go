// Отдельный процесс воркеров: обрабатывает очередь задач и планирует сбор без HTTP API.
// Очередь разбирается через SKIP LOCKED, так что таких процессов можно запустить несколько.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"vkmod/internal/app"
	"vkmod/internal/config"
	"vkmod/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("ошибка загрузки конфига: " + err.Error())
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Log.Warn(w)
	}
	if err != nil {
		logger.Log.Fatal("Некорректная конфигурация", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.InitApp(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Ошибка инициализации воркера", zap.Error(err))
	}
	a.StartWorkers(ctx)

	<-ctx.Done()
	logger.Log.Info("Остановка воркеров")
	a.Close()
}
