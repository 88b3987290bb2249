package db

import (
	"context"
	"embed"
	"strings"

	"vkmod/internal/config"
	"vkmod/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func NewPostgresConnection(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.GetDSN())
	if err != nil {
		return nil, errors.Wrapf(err, "creating connection pool failed, dsn=%q", cfg.GetDSNSafe())
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres failed")
	}

	return pool, nil
}

// Migrate применяет встроенные SQL-миграции. Отсутствие изменений ошибкой не считается.
func Migrate(cfg *config.Config) error {
	return MigrateDSN(cfg.GetDSN())
}

// MigrateDSN делает то же, что Migrate, для готовой postgres:// строки подключения.
func MigrateDSN(postgresDSN string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "opening embedded migrations failed")
	}

	// драйвер pgx/v5 регистрируется под схемой pgx5://
	rest := strings.TrimPrefix(strings.TrimPrefix(postgresDSN, "postgresql://"), "postgres://")
	m, err := migrate.NewWithSourceInstance("iofs", src, "pgx5://"+rest)
	if err != nil {
		return errors.Wrap(err, "initializing migrations failed")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "applying migrations failed")
	}

	version, dirty, _ := m.Version()
	logger.Log.Info("Миграции применены", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
