package app

import (
	"encoding/json"
	"net/http"
	"todoService/internal/handlers"
	"todoService/internal/hello"
	"todoService/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "todo-api"

// NewRouter собирает все маршруты API. Ограничение rpm действует только на /api/todos, rpm <= 0 его отключает.
func NewRouter(h *handlers.TodoHandler, rpm int) http.Handler {
	r := chi.NewRouter()

	r.NotFound(jsonError(http.StatusNotFound, "Not found"))
	r.MethodNotAllowed(jsonError(http.StatusMethodNotAllowed, "Method not allowed"))

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.HeaderRequestID, "traceparent", "tracestate"},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	// liveness не ограничивается
	hello.Mount(r)
	r.Get("/api/health", h.APIHealth) // GET /api/health

	r.Route("/api/todos", func(r chi.Router) {
		r.Use(middleware.RateLimit(rpm))

		r.Get("/", h.ListTodos) // GET /api/todos
		r.Post("/", h.PostTodo) // POST /api/todos

		r.Get("/completed", h.ListCompleted) // GET /api/todos/completed
		r.Get("/pending", h.ListPending)     // GET /api/todos/pending

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.GetTodoByID)       // GET /api/todos/{id}
			r.Put("/", h.UpdateTodoByID)    // PUT /api/todos/{id}
			r.Delete("/", h.DeleteTodoByID) // DELETE /api/todos/{id}
		})
	})

	return otelhttp.NewHandler(r, serviceName, otelhttp.WithPropagators(Propagator()))
}

func jsonError(code int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
	}
}
