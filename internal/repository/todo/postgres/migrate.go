package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"todoService/internal/logger"
	"todoService/internal/migrations"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Migrate создаёт схему. Повторный вызов на актуальной базе ничего не делает.
func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")

	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("Repository: Ошибка применения миграций", err)
			return fmt.Errorf("применение миграций: %w", err)
		}

		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("версия схемы: %w", err)
		}
		logger.Info("Repository: Схема актуальна", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	})
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	return s.withMigrator(ctx, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("Repository: Ошибка отката миграций", err)
			return fmt.Errorf("откат миграций: %w", err)
		}
		return nil
	})
}

func (s *Storage) withMigrator(ctx context.Context, fn func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", s.connString)
	if err != nil {
		return fmt.Errorf("открытие соединения для миграций: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("драйвер миграций: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		driver.Close()
		return fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		source.Close()
		driver.Close()
		return fmt.Errorf("создание мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Repository: Ошибка закрытия мигратора",
				zap.NamedError("source", srcErr),
				zap.NamedError("database", dbErr))
		}
	}()

	return fn(m)
}
