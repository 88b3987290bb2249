package app

import (
	"context"
	"time"

	"vkmod/internal/config"
	"vkmod/internal/db"
	"vkmod/internal/handlers"
	"vkmod/internal/logger"
	"vkmod/internal/redisstore"
	"vkmod/internal/repository"
	"vkmod/internal/retry"
	"vkmod/internal/routes"
	"vkmod/internal/services"
	"vkmod/internal/tasks"
	"vkmod/internal/vk"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const emailWorkers = 2

// App — собранное приложение: HTTP-роутер и фоновые воркеры поверх общих зависимостей.
type App struct {
	Router *mux.Router

	cfg       *config.Config
	conn      *pgxpool.Pool
	rdb       *redis.Client
	pool      *tasks.Pool
	scheduler *tasks.Scheduler
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.DbMigrate {
		if err := db.Migrate(cfg); err != nil {
			return nil, errors.Wrap(err, "миграции")
		}
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := redisstore.NewClient(ctx, cfg)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "подключение к redis")
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	authorRepo := repository.NewAuthorRepo(conn)
	postRepo := repository.NewPostRepo(conn)
	commentRepo := repository.NewCommentRepo(conn)
	keywordRepo := repository.NewKeywordRepo(conn)
	errorRepo := repository.NewErrorReportRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)
	statsRepo := repository.NewStatsRepository(conn)
	taskRepo := repository.NewTaskRepository(conn)

	// VK API
	vkClient := vk.NewClient(vk.Options{
		BaseURL:    cfg.VKAPIURL,
		Token:      cfg.VKToken,
		Version:    cfg.VKAPIVersion,
		RPS:        cfg.VKRPS,
		MaxRetries: cfg.VKMaxRetries,
		Timeout:    cfg.VKTimeout,
		Backoff:    retry.Backoff{Base: 300 * time.Millisecond, Max: 5 * time.Second},
	})
	vkRepo := vk.NewRepository(vkClient, cfg.VKCacheTTL)
	vkService := vk.NewService(vkRepo, cfg.VKCacheTTL)

	// Сервисы
	settingsSvc := services.NewSettingsService(settingsRepo, map[string]string{
		services.KeyScrapeInterval: cfg.ScrapeInterval.String(),
		services.KeyVKCacheTTL:     cfg.VKCacheTTL.String(),
	})
	vkService.SetContentTTL(settingsSvc.Duration(ctx, services.KeyVKCacheTTL))
	settingsSvc.OnChange(services.KeyVKCacheTTL, func(value string) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return
		}
		vkService.SetContentTTL(d)
	})

	moderationSvc := services.NewModerationService(keywordRepo, settingsSvc)
	authSvc := services.NewAuthService(
		userRepo,
		redisstore.NewCounter(rdb, "auth:"),
		redisstore.NewBlacklist(rdb),
		services.AuthConfig{
			JWTSecret:        cfg.JWTSecret,
			AccessTTL:        cfg.AccessTokenTTL,
			RefreshTTL:       cfg.RefreshTokenTTL,
			MaxLoginAttempts: cfg.LoginMaxAttempts,
			LoginLockTTL:     cfg.LoginLockTTL,
		},
	)
	authorSvc := services.NewAuthorService(authorRepo, vkService)
	postSvc := services.NewPostService(postRepo, moderationSvc)
	commentSvc := services.NewCommentService(commentRepo, moderationSvc)
	keywordSvc := services.NewKeywordService(keywordRepo, moderationSvc)
	errorSvc := services.NewErrorReportService(errorRepo, cfg.AlertEmails)
	statsSvc := services.NewStatsService(statsRepo)
	searchSvc := services.NewSearchService(postRepo, commentRepo)
	taskSvc := services.NewTaskService(taskRepo, authorRepo, cfg.TaskMaxAttempts)
	scrapeSvc := services.NewScrapeService(
		authorRepo, postRepo, commentRepo, vkService,
		redisstore.NewLocker(rdb), taskSvc, moderationSvc, settingsSvc,
	)

	emailSvc := services.NewEmailService(cfg)
	if emailSvc.Enabled() {
		for i := 0; i < emailWorkers; i++ {
			services.StartEmailWorker(emailSvc)
		}
	} else {
		errorSvc.DisableAlerts()
		logger.Log.Warn("SMTP не настроен, оповещения об ошибках не отправляются")
	}

	// Очередь задач
	pool := tasks.NewPool(taskRepo, errorSvc, tasks.Options{
		Workers: cfg.WorkerCount,
		Poll:    cfg.WorkerPoll,
	})
	tasks.Register(pool, scrapeSvc, postSvc)
	scheduler := tasks.NewScheduler(taskSvc, func(ctx context.Context) time.Duration {
		return settingsSvc.Duration(ctx, services.KeyScrapeInterval)
	}, cfg.ScrapeInterval)

	// Хендлеры
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc),
		Authors:  handlers.NewAuthorHandler(authorSvc),
		Posts:    handlers.NewPostHandler(postSvc, taskSvc),
		Comments: handlers.NewCommentHandler(commentSvc),
		Keywords: handlers.NewKeywordHandler(keywordSvc),
		Search:   handlers.NewSearchHandler(searchSvc, moderationSvc),
		Tasks:    handlers.NewTaskHandler(taskSvc),
		Settings: handlers.NewSettingsHandler(settingsSvc),
		Errors:   handlers.NewErrorReportHandler(errorSvc),
		Admin:    handlers.NewAdminHandler(statsSvc, vkClient, vkRepo),
		Logs:     handlers.NewAdminLogsHandler(),
		Healthz: handlers.Healthz(map[string]handlers.Pinger{
			"postgres": conn,
			"redis":    handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
	}

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, h, cfg.JWTSecret, authSvc)

	return &App{
		Router:    router,
		cfg:       cfg,
		conn:      conn,
		rdb:       rdb,
		pool:      pool,
		scheduler: scheduler,
	}, nil
}

// StartWorkers запускает пул воркеров и планировщик сбора. Останавливаются по отмене ctx.
func (a *App) StartWorkers(ctx context.Context) {
	a.pool.Start(ctx)
	go a.scheduler.Run(ctx)
	logger.Log.Info("Воркеры запущены",
		zap.Int("workers", a.cfg.WorkerCount),
		zap.Duration("poll", a.cfg.WorkerPoll))
}

// Close дожидается воркеров и закрывает соединения.
func (a *App) Close() {
	a.pool.Wait()
	if err := a.rdb.Close(); err != nil {
		logger.Log.Warn("Ошибка закрытия redis", zap.Error(err))
	}
	a.conn.Close()
}
