package app

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/fishery_booking/internal/config"
	"github.com/Freeeeeet/fishery_booking/internal/repository"
	"github.com/Freeeeeet/fishery_booking/internal/repository/memory"
	"github.com/Freeeeeet/fishery_booking/internal/repository/sqlite"
	"github.com/Freeeeeet/fishery_booking/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// OpenStore открывает хранилище слотов по DB_DRIVER.
// Для Postgres перед использованием применяются миграции.
// Возвращённую функцию закрытия нужно вызвать при остановке.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.SlotStore, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}

		migrator, err := NewMigrator(pool, cfg.DB.MigrationsPath, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}

		logger.Info("Connected to Postgres")
		return repository.NewSlotRepository(pool), pool.Close, nil

	case config.DriverSQLite:
		repo, err := sqlite.Open(cfg.DB.SQLitePath)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("Opened SQLite store", zap.String("path", cfg.DB.SQLitePath))
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close SQLite store", zap.Error(err))
			}
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewSlotRepository(), func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DB.Driver)
}
