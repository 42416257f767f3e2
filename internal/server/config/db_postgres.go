package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/IvanChernomyrdin/go-carrental/internal/shared/logger"

	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// OpenDB открывает пул соединений с PostgreSQL (драйвер pgx), ждёт готовности базы
// и, если включено, накатывает миграции.
//
// База в docker-compose поднимается дольше сервера, поэтому Ping повторяется
// connectAttempts раз с паузой connectDelay.
func OpenDB(ctx context.Context, cfg DBConfig, mig MigrationsConfig, log *logger.HTTPLogger) (*sql.DB, error) {
	sugar := log.Sugar()

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := ping(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}

	if !mig.Enabled {
		sugar.Info("migrations disabled")
		return db, nil
	}
	if err := Migrate(db, mig.Path); err != nil {
		db.Close()
		return nil, err
	}

	sugar.Info("migrations applied successfully")
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, log *logger.HTTPLogger) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, connectDelay)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Sugar().Warnw("db is not ready", "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return fmt.Errorf("ping db: %w", err)
}

// Migrate применяет миграции из path (например, file://migrations/postgres).
// migrate.ErrNoChange ошибкой не считается.
func Migrate(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
