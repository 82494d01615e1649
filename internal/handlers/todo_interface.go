package handlers

import (
	"context"
	"todoService/internal/models/todo"
)

type Service interface {
	CreateTodo(ctx context.Context, title, description string, completed bool) (*todo.Todo, error)
	GetTodoByID(ctx context.Context, id int64) (*todo.Todo, error)
	ListTodos(ctx context.Context) ([]*todo.Todo, error)
	ListCompleted(ctx context.Context) ([]*todo.Todo, error)
	ListPending(ctx context.Context) ([]*todo.Todo, error)
	UpdateTodo(ctx context.Context, id int64, options ...todo.TodoOption) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}
