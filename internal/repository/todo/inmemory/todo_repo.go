package inmemory

import (
	"context"
	"sync"
	"todoService/internal/logger"
	"todoService/internal/models/todo"
	repo "todoService/internal/repository"

	"go.uber.org/zap"
)

// TodoStorage хранит записи в памяти. Наружу отдаются только копии,
// изменение видно другим запросам только после успешного завершения операции.
type TodoStorage struct {
	storage map[int64]*todo.Todo
	mtx     *sync.RWMutex
	ids     []int64
	lastID  int64
}

func NewTodoStorage() *TodoStorage {
	return &TodoStorage{
		storage: make(map[int64]*todo.Todo),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
	}
}

func (s *TodoStorage) Close() {
	logger.Info("Repository: Хранилище в памяти закрыто")
}

func (s *TodoStorage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	// id не переиспользуются даже после удаления
	s.lastID++
	stored := todoToCreate.Clone()
	stored.ID = s.lastID

	s.storage[stored.ID] = stored
	s.ids = append(s.ids, stored.ID)

	todoToCreate.ID = stored.ID
	return nil
}

func (s *TodoStorage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	todoToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return todoToGet.Clone(), nil
}

func (s *TodoStorage) List(ctx context.Context) ([]*todo.Todo, error) {
	return s.filter(ctx, func(*todo.Todo) bool { return true })
}

func (s *TodoStorage) ListByCompleted(ctx context.Context, completed bool) ([]*todo.Todo, error) {
	return s.filter(ctx, func(t *todo.Todo) bool { return t.Completed == completed })
}

func (s *TodoStorage) filter(ctx context.Context, keep func(*todo.Todo) bool) ([]*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*todo.Todo{}
	for _, id := range s.ids {
		t := s.storage[id]
		if !keep(t) {
			continue
		}
		res = append(res, t.Clone())
	}
	return res, nil
}

// Update применяет mutate к копии записи и сохраняет её только если mutate вернул nil
func (s *TodoStorage) Update(ctx context.Context, id int64, mutate func(*todo.Todo) error) (*todo.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	working := existing.Clone()
	if err := mutate(working); err != nil {
		logger.Warn("Repository: Изменение отменено", zap.Int64("todo_id", id), zap.Error(err))
		return nil, err
	}
	working.ID = existing.ID
	working.CreatedAt = existing.CreatedAt

	s.storage[id] = working
	return working.Clone(), nil
}

func (s *TodoStorage) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
