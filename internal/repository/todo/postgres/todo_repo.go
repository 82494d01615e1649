package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoService/internal/logger"
	"todoService/internal/models/todo"
	repo "todoService/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

const selectColumns = `SELECT
				id,
				title,
				description,
				completed,
				created_at,
				updated_at
				FROM todos`

type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

type Storage struct {
	pool       *pgxpool.Pool
	connString string
}

func New(ctx context.Context, connString string, opts PoolOptions) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 && opts.MinConns <= config.MaxConns {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL",
		zap.Int32("max_conns", config.MaxConns),
		zap.Int32("min_conns", config.MinConns))
	return &Storage{pool: pool, connString: connString}, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

// inTx выполняет fn в транзакции. Любая ошибка или паника в fn откатывает транзакцию.
func (s *Storage) inTx(ctx context.Context, operation string, fn func(pgx.Tx) error) error {
	start := time.Now()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err, zap.String("operation", operation))
		return fmt.Errorf("начало транзакции: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error("Repository: Ошибка отката транзакции", rbErr, zap.String("operation", operation))
			return
		}
		logger.Warn("Repository: Транзакция откачена", zap.String("operation", operation))
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err, zap.String("operation", operation))
		return fmt.Errorf("фиксация транзакции: %w", err)
	}
	committed = true

	logSlow(operation, start)
	return nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	query := `INSERT INTO todos
				(title, description, completed, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`

	return s.inTx(ctx, "create_todo", func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, query,
			todoToCreate.Title,
			todoToCreate.Description,
			todoToCreate.Completed,
			todoToCreate.CreatedAt,
			todoToCreate.UpdatedAt,
		).Scan(&id)
		if err != nil {
			logger.Error("Repository: Не удалось добавить запись", err)
			return fmt.Errorf("добавление записи: %w", err)
		}

		todoToCreate.ID = id
		return nil
	})
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, selectColumns+` WHERE id = $1`, id)
	if err != nil {
		logger.Error("Repository: Не удалось получить запись", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записи: %w", err)
	}

	found, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[todo.Todo])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось прочитать запись", err)
		return nil, fmt.Errorf("чтение записи: %w", err)
	}

	logSlow("get_todo", start)
	return normalize(found), nil
}

// все записи в порядке id
func (s *Storage) List(ctx context.Context) ([]*todo.Todo, error) {
	return s.list(ctx, "list_todos", selectColumns+` ORDER BY id`)
}

func (s *Storage) ListByCompleted(ctx context.Context, completed bool) ([]*todo.Todo, error) {
	return s.list(ctx, "list_todos_by_completed", selectColumns+` WHERE completed = $1 ORDER BY id`, completed)
}

func (s *Storage) list(ctx context.Context, operation, query string, args ...any) ([]*todo.Todo, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить записи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записей: %w", err)
	}

	todos, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[todo.Todo])
	if err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	res := make([]*todo.Todo, 0, len(todos))
	for _, t := range todos {
		res = append(res, normalize(t))
	}

	logSlow(operation, start)
	return res, nil
}

// Update блокирует строку, применяет mutate и сохраняет результат в той же транзакции
func (s *Storage) Update(ctx context.Context, id int64, mutate func(*todo.Todo) error) (*todo.Todo, error) {
	updateQuery := `UPDATE todos
			SET title = $1,
				description = $2,
				completed = $3,
				updated_at = $4
			WHERE id = $5`

	var updated *todo.Todo
	err := s.inTx(ctx, "update_todo", func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return fmt.Errorf("блокировка записи: %w", err)
		}

		current, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[todo.Todo])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repo.ErrNotFound
			}
			return fmt.Errorf("чтение записи: %w", err)
		}
		current = normalize(current)

		if err := mutate(current); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, updateQuery,
			current.Title,
			current.Description,
			current.Completed,
			current.UpdatedAt,
			id,
		)
		if err != nil {
			logger.Error("Repository: Не удалось обновить запись", err, zap.Int64("todo_id", id))
			return fmt.Errorf("обновление записи: %w", err)
		}

		current.ID = id
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, "delete_todo", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
		if err != nil {
			logger.Error("Repository: Удаление записи", err, zap.Int64("todo_id", id))
			return fmt.Errorf("удаление записи: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func normalize(t *todo.Todo) *todo.Todo {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t
}

func logSlow(operation string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}
