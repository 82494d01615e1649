package todo

// TodoOption изменяет одно поле записи при частичном обновлении
type TodoOption func(*Todo)

func WithTitle(title string) TodoOption {
	return func(todo *Todo) {
		todo.Title = title
	}
}

func WithDescription(description string) TodoOption {
	return func(todo *Todo) {
		todo.Description = description
	}
}

func WithCompleted(completed bool) TodoOption {
	return func(todo *Todo) {
		todo.Completed = completed
	}
}

// Apply применяет опции по порядку, nil пропускаются
func Apply(t *Todo, options ...TodoOption) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
}
