package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoService/internal/logger"
	"todoService/internal/models/todo"
	rep "todoService/internal/repository"

	"go.uber.org/zap"
)

// здесь происходит проверка входных данных и перевод ошибок хранилища в бизнес-ошибки

const resourceTodo = "todo"

type TodoRepository interface {
	Create(context.Context, *todo.Todo) error
	GetByID(context.Context, int64) (*todo.Todo, error)
	List(context.Context) ([]*todo.Todo, error)
	ListByCompleted(context.Context, bool) ([]*todo.Todo, error)
	Update(context.Context, int64, func(*todo.Todo) error) (*todo.Todo, error)
	Delete(context.Context, int64) error
}

type TodoService struct {
	repo TodoRepository
	now  func() time.Time
}

type ServiceOption func(*TodoService)

// WithClock подменяет источник времени, нужен в тестах
func WithClock(now func() time.Time) ServiceOption {
	return func(s *TodoService) {
		s.now = now
	}
}

func NewTodoService(repo TodoRepository, options ...ServiceOption) *TodoService {
	s := &TodoService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// timestamp возвращает текущее время в UTC с точностью TIMESTAMPTZ
func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextUpdatedAt гарантирует строгий рост updated_at даже при одинаковых показаниях часов
func (s *TodoService) nextUpdatedAt(previous time.Time) time.Time {
	now := s.timestamp()
	if !now.After(previous) {
		return previous.Add(time.Microsecond)
	}
	return now
}

func (s *TodoService) CreateTodo(ctx context.Context, title, description string, completed bool) (*todo.Todo, error) {
	if strings.TrimSpace(title) == "" {
		logger.Info("Service: Пустое название", zap.String("operation", "create_todo"))
		return nil, NewValidationError("title", "Title is required")
	}

	now := s.timestamp()
	created := &todo.Todo{
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, created); err != nil {
		logger.Error("Service: Не удалось создать запись", err)
		return nil, NewPersistenceError("create", err)
	}

	logger.Info("Service: Запись создана", zap.Int64("todo_id", created.ID))
	return created, nil
}

func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Запись не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound(resourceTodo, id)
		}
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return found, nil
}

func (s *TodoService) ListTodos(ctx context.Context) ([]*todo.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение записей: %w", err)
	}
	return todos, nil
}

func (s *TodoService) ListCompleted(ctx context.Context) ([]*todo.Todo, error) {
	return s.listByCompleted(ctx, true)
}

func (s *TodoService) ListPending(ctx context.Context) ([]*todo.Todo, error) {
	return s.listByCompleted(ctx, false)
}

func (s *TodoService) listByCompleted(ctx context.Context, completed bool) ([]*todo.Todo, error) {
	todos, err := s.repo.ListByCompleted(ctx, completed)
	if err != nil {
		return nil, fmt.Errorf("получение записей completed=%t: %w", completed, err)
	}
	return todos, nil
}

// UpdateTodo меняет только переданные поля. Без опций возвращает ошибку валидации,
// но сначала проверяет, что запись существует.
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, options ...todo.TodoOption) (*todo.Todo, error) {
	if !hasOptions(options) {
		if _, err := s.GetTodoByID(ctx, id); err != nil {
			return nil, err
		}
		logger.Info("Service: Нет данных для обновления", zap.Int64("todo_id", id))
		return nil, NewValidationError("body", "No data provided")
	}

	updated, err := s.repo.Update(ctx, id, func(current *todo.Todo) error {
		todo.Apply(current, options...)
		if strings.TrimSpace(current.Title) == "" {
			return NewValidationError("title", "Title cannot be empty")
		}
		current.UpdatedAt = s.nextUpdatedAt(current.UpdatedAt)
		return nil
	})
	if err != nil {
		return nil, s.writeError("update", id, err)
	}

	logger.Info("Service: Запись обновлена", zap.Int64("todo_id", id))
	return updated, nil
}

func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.writeError("delete", id, err)
	}

	logger.Info("Service: Запись удалена", zap.Int64("todo_id", id))
	return nil
}

func (s *TodoService) writeError(operation string, id int64, err error) error {
	if businessErr, ok := AsBusinessError(err); ok {
		return businessErr
	}
	if errors.Is(err, rep.ErrNotFound) {
		logger.Info("Service: Запись не найдена", zap.Int64("target_id", id))
		return NewNotFound(resourceTodo, id)
	}
	logger.Error("Service: Ошибка записи, изменения откачены", err,
		zap.String("operation", operation),
		zap.Int64("todo_id", id))
	return NewPersistenceError(operation, err)
}

func hasOptions(options []todo.TodoOption) bool {
	for _, opt := range options {
		if opt != nil {
			return true
		}
	}
	return false
}
