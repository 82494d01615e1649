// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

const (
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig. URL - строка подключения, единственная обязательная опция для postgres
type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"` // 0 отключает ограничение
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "5000",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Repository: RepositoryConfig{Type: RepositoryPostgres},
		// RateLimit выключен, пока не задан requests_per_minute
	}
}

// RegisterFlags добавляет флаги командной строки, которые понимает Load
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", DefaultPath, "путь к YAML файлу конфигурации")
	fs.String("host", "", "адрес для прослушивания")
	fs.String("port", "", "порт HTTP сервера")
	fs.String("database-url", "", "строка подключения к PostgreSQL")
	fs.String("repository", "", "тип хранилища: postgres или inmemory")
	fs.Bool("log-development", false, "человекочитаемые логи")
}

// Load собирает конфиг: значения по умолчанию, затем YAML файл, затем переменные
// окружения и флаги. fs может быть nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	path, required := DefaultPath, false
	if fs != nil {
		if flag := fs.Lookup("config"); flag != nil {
			path, required = flag.Value.String(), flag.Changed
		}
	}

	if err := cfg.readFile(path, required); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := bind(v, fs); err != nil {
		return nil, fmt.Errorf("привязка переменных окружения: %w", err)
	}
	cfg.overlay(v)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return nil
}

var envKeys = map[string]string{
	"server.host":                    "HOST",
	"server.port":                    "PORT",
	"server.shutdown_timeout":        "SHUTDOWN_TIMEOUT",
	"database.url":                   "DATABASE_URL",
	"database.max_connections":       "DB_MAX_CONNECTIONS",
	"database.min_connections":       "DB_MIN_CONNECTIONS",
	"database.idle_timeout":          "DB_IDLE_TIMEOUT",
	"logging.development":            "LOG_DEVELOPMENT",
	"repository.type":                "REPOSITORY_TYPE",
	"rate_limit.requests_per_minute": "RATE_LIMIT_RPM",
}

var flagKeys = map[string]string{
	"server.host":         "host",
	"server.port":         "port",
	"database.url":        "database-url",
	"repository.type":     "repository",
	"logging.development": "log-development",
}

func bind(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	if fs == nil {
		return nil
	}
	for key, name := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) overlay(v *viper.Viper) {
	if v.IsSet("server.host") {
		c.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("server.port") {
		c.Server.Port = v.GetString("server.port")
	}
	if v.IsSet("server.shutdown_timeout") {
		c.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	}
	if v.IsSet("database.url") {
		c.Database.URL = v.GetString("database.url")
	}
	if v.IsSet("database.max_connections") {
		c.Database.MaxConnections = v.GetInt32("database.max_connections")
	}
	if v.IsSet("database.min_connections") {
		c.Database.MinConnections = v.GetInt32("database.min_connections")
	}
	if v.IsSet("database.idle_timeout") {
		c.Database.IdleTimeout = v.GetDuration("database.idle_timeout")
	}
	if v.IsSet("logging.development") {
		c.Logging.Development = v.GetBool("logging.development")
	}
	if v.IsSet("repository.type") {
		c.Repository.Type = v.GetString("repository.type")
	}
	if v.IsSet("rate_limit.requests_per_minute") {
		c.RateLimit.RequestsPerMinute = v.GetInt("rate_limit.requests_per_minute")
	}
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("для postgres нужна строка подключения (DATABASE_URL)")
		}
	case RepositoryInMemory:
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("порт сервера не задан")
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		return errors.New("rate_limit.requests_per_minute не может быть отрицательным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}
