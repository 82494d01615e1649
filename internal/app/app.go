package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"todoService/internal/config"
	"todoService/internal/handlers"
	"todoService/internal/logger"
	"todoService/internal/repository/todo/inmemory"
	"todoService/internal/repository/todo/postgres"
	"todoService/internal/service"

	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     http.Handler
	repository service.TodoRepository
	service    handlers.Service
	shutdowns  []func() // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if a.config == nil {
		return nil, errors.New("конфигурация не задана")
	}

	if err := logger.Init(serviceName, a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}

	initTelemetry()

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		a.Shutdown()
		return nil, err
	}
	a.repository = repo

	todoService := service.NewTodoService(a.repository)
	a.service = todoService

	todoHandler := handlers.NewTodoHandler(todoService)
	a.router = NewRouter(&todoHandler, a.config.RateLimit.RequestsPerMinute)

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))

	return a, nil
}

func (a *App) initRepository(ctx context.Context) (service.TodoRepository, error) {
	switch a.config.Repository.Type {
	case config.RepositoryInMemory:
		logger.Info("App: Используется in-memory хранилище")
		storage := inmemory.NewTodoStorage()
		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil

	case config.RepositoryPostgres:
		logger.Info("App: Подключение к PostgreSQL")
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolOptions{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("подключение к базе: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: Закрытие пула соединений...")
			storage.Close()
		})

		if err := storage.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
		return storage, nil

	default:
		return nil, fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run блокируется до отмены ctx и освобождает ресурсы после остановки сервера
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("приложение не инициализировано")
	}
	defer a.Shutdown()

	return Serve(ctx, a.server, a.config.Server.ShutdownTimeout)
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
