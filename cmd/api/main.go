package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"todoService/internal/app"
	"todoService/internal/config"
	"todoService/internal/logger"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg).Init(ctx)
	if err != nil {
		return fmt.Errorf("инициализация приложения: %w", err)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("App: Сервер завершился с ошибкой", err)
		return err
	}

	logger.Info("App: Сервер остановлен")
	return nil
}
