package inmemory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"todoService/internal/models/todo"
	"todoService/internal/repository"
	"todoService/internal/repository/todo/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTodo(title string, completed bool) *todo.Todo {
	now := time.Now().UTC()
	return &todo.Todo{
		Title:     title,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestTodoStorage_Create тестирует создание записи
func TestTodoStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	first := newTodo("Buy milk", false)
	second := newTodo("Buy bread", false)

	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Create(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	retrieved, err := storage.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", retrieved.Title)
	assert.Equal(t, first.CreatedAt, retrieved.CreatedAt)
}

// TestTodoStorage_IDsNotReused тестирует, что id не переиспользуются после удаления
func TestTodoStorage_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	first := newTodo("a", false)
	require.NoError(t, storage.Create(ctx, first))
	require.NoError(t, storage.Delete(ctx, first.ID))

	second := newTodo("b", false)
	require.NoError(t, storage.Create(ctx, second))
	assert.NotEqual(t, first.ID, second.ID)
}

// TestTodoStorage_GetByID_NotFound тестирует получение несуществующей записи
func TestTodoStorage_GetByID_NotFound(t *testing.T) {
	storage := inmemory.NewTodoStorage()

	_, err := storage.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTodoStorage_ReturnsCopies тестирует, что изменение результата не меняет хранилище
func TestTodoStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Original", false)
	require.NoError(t, storage.Create(ctx, created))
	created.Title = "changed after create"

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	retrieved.Title = "changed after get"

	again, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

// TestTodoStorage_Update тестирует обновление записи
func TestTodoStorage_Update(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Original", false)
	require.NoError(t, storage.Create(ctx, created))

	later := created.UpdatedAt.Add(time.Second)
	updated, err := storage.Update(ctx, created.ID, func(t *todo.Todo) error {
		todo.Apply(t, todo.WithCompleted(true))
		t.UpdatedAt = later
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, later, updated.UpdatedAt)

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.Completed)
}

// TestTodoStorage_Update_Rollback тестирует, что ошибка mutate не оставляет следов
func TestTodoStorage_Update_Rollback(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Original", false)
	require.NoError(t, storage.Create(ctx, created))

	mutateErr := errors.New("title is required")
	_, err := storage.Update(ctx, created.ID, func(t *todo.Todo) error {
		t.Title = ""
		t.Completed = true
		return mutateErr
	})
	assert.ErrorIs(t, err, mutateErr)

	retrieved, err := storage.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", retrieved.Title)
	assert.False(t, retrieved.Completed)
}

// TestTodoStorage_Update_ImmutableFields тестирует, что id и created_at не меняются
func TestTodoStorage_Update_ImmutableFields(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	created := newTodo("Original", false)
	require.NoError(t, storage.Create(ctx, created))

	updated, err := storage.Update(ctx, created.ID, func(t *todo.Todo) error {
		t.ID = 999
		t.CreatedAt = time.Time{}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

// TestTodoStorage_Update_NotFound тестирует обновление несуществующей записи
func TestTodoStorage_Update_NotFound(t *testing.T) {
	storage := inmemory.NewTodoStorage()
	called := false

	_, err := storage.Update(context.Background(), 5, func(*todo.Todo) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.False(t, called)
}

// TestTodoStorage_Delete тестирует удаление
func TestTodoStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	todos := make([]*todo.Todo, 5)
	for i := range todos {
		todos[i] = newTodo(fmt.Sprintf("Todo %d", i), false)
		require.NoError(t, storage.Create(ctx, todos[i]))
	}

	require.NoError(t, storage.Delete(ctx, todos[2].ID))

	_, err := storage.GetByID(ctx, todos[2].ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, storage.Delete(ctx, todos[2].ID), repository.ErrNotFound)

	all, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{todos[0].ID, todos[1].ID, todos[3].ID, todos[4].ID},
		[]int64{all[0].ID, all[1].ID, all[2].ID, all[3].ID})
}

// TestTodoStorage_ListByCompleted тестирует фильтрацию по completed
func TestTodoStorage_ListByCompleted(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()

	for i := 0; i < 6; i++ {
		require.NoError(t, storage.Create(ctx, newTodo(fmt.Sprintf("Todo %d", i), i%3 == 0)))
	}

	all, err := storage.List(ctx)
	require.NoError(t, err)
	completed, err := storage.ListByCompleted(ctx, true)
	require.NoError(t, err)
	pending, err := storage.ListByCompleted(ctx, false)
	require.NoError(t, err)

	assert.Len(t, completed, 2)
	assert.Len(t, pending, 4)
	assert.Len(t, all, len(completed)+len(pending))
	for _, c := range completed {
		assert.True(t, c.Completed)
	}
	for _, p := range pending {
		assert.False(t, p.Completed)
	}
}

// TestTodoStorage_EmptyLists тестирует пустое хранилище
func TestTodoStorage_EmptyLists(t *testing.T) {
	storage := inmemory.NewTodoStorage()

	all, err := storage.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

// TestTodoStorage_CanceledContext тестирует отменённый контекст
func TestTodoStorage_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	storage := inmemory.NewTodoStorage()

	err := storage.Create(ctx, newTodo("x", false))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = storage.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestTodoStorage_ConcurrentAccess тестирует конкурентный доступ
func TestTodoStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTodoStorage()
	todoCount := 100
	goroutines := 10

	var wg sync.WaitGroup
	errs := make(chan error, todoCount)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < todoCount/goroutines; j++ {
				if err := storage.Create(ctx, newTodo(fmt.Sprintf("Todo %d-%d", workerID, j), false)); err != nil {
					errs <- err
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	all, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, todoCount)

	seen := make(map[int64]bool, len(all))
	for _, t2 := range all {
		assert.False(t, seen[t2.ID], "duplicate id %d", t2.ID)
		seen[t2.ID] = true
	}
}
