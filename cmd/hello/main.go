package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"todoService/internal/app"
	"todoService/internal/hello"
	"todoService/internal/logger"
	"todoService/internal/middleware"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("hello", pflag.ExitOnError)
	fs.String("host", "0.0.0.0", "адрес для прослушивания")
	fs.String("port", "5000", "порт HTTP сервера")
	fs.Bool("log-development", false, "человекочитаемые логи")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("привязка флагов: %w", err)
	}

	if err := logger.Init("hello", v.GetBool("log-development")); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort(v.GetString("host"), v.GetString("port")),
		Handler:           hello.NewRouter(middleware.RequestID, middleware.Logging, middleware.Recover),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := app.Serve(ctx, srv, 10*time.Second); err != nil {
		logger.Error("App: Сервер завершился с ошибкой", err)
		return err
	}
	return nil
}
