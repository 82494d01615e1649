// Package hello отдаёт статическую приветственную страницу и проверку живости.
package hello

import (
	"net/http"
	"todoService/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	HomePage   = "<h1>Ubuntus srvr</h1><p>123456</p>"
	HealthBody = "OK"
)

func Home(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Главная страница")
	write(w, "text/html; charset=utf-8", HomePage)
}

func Health(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")
	write(w, "text/plain; charset=utf-8", HealthBody)
}

// Mount регистрирует / и /health на переданном роутере
func Mount(r chi.Router) {
	r.Get("/", Home)
	r.Get("/health", Health)
}

func NewRouter(middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middlewares...)
	Mount(r)
	return r
}

func write(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		logger.Warn("HTTP: Ошибка записи ответа", zap.Error(err))
	}
}
