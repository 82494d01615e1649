package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
	"todoService/internal/handlers/dto"
	"todoService/internal/logger"

	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20

	msgNotFound       = "Todo not found"
	msgInvalidJSON    = "Invalid JSON"
	msgContentType    = "Content-Type must be application/json"
	msgTitleRequired  = "Title is required"
	msgDeleted        = "Todo deleted successfully"
	msgHealthy        = "Todo API is running"
	healthStatusValue = "healthy"
)

type TodoHandler struct {
	TodoService Service
	now         func() time.Time
}

func NewTodoHandler(todoService Service) TodoHandler {
	return TodoHandler{
		TodoService: todoService,
		now:         time.Now,
	}
}

func (s *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	todos, err := s.TodoService.ListTodos(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_todos")
		return
	}

	logger.Info("HTTP_OUT: Записи получены",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodoList(todos))
}

func (s *TodoHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	todos, err := s.TodoService.ListCompleted(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_completed")
		return
	}

	logger.Info("HTTP_OUT: Выполненные записи получены",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodoList(todos))
}

func (s *TodoHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	todos, err := s.TodoService.ListPending(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_pending")
		return
	}

	logger.Info("HTTP_OUT: Невыполненные записи получены",
		zap.Int("count", len(todos)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodoList(todos))
}

func (s *TodoHandler) GetTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	found, err := s.TodoService.GetTodoByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_todo")
		return
	}

	logger.Info("HTTP_OUT: Запись получена",
		zap.Int64("todo_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodo(found))
}

func (s *TodoHandler) PostTodo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !s.jsonContent(w, r) {
		return
	}

	var request dto.CreateTodoRequest
	empty, err := decodeBody(w, r, &request)
	if err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	if empty {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_body"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, msgTitleRequired)
		return
	}

	completed := false
	if request.Completed != nil {
		completed = *request.Completed
	}

	created, err := s.TodoService.CreateTodo(r.Context(), request.Title, request.Description, completed)
	if err != nil {
		handleServiceError(w, r, err, "create_todo")
		return
	}

	logger.Info("HTTP_OUT: Запись создана",
		zap.Int64("todo_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromTodo(created))
}

func (s *TodoHandler) UpdateTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if !s.jsonContent(w, r) {
		return
	}

	var request dto.UpdateTodoRequest
	if _, err := decodeBody(w, r, &request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	// пустое тело даёт пустой список опций, сервис сам решит между 404 и 400
	updated, err := s.TodoService.UpdateTodo(r.Context(), id, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_todo")
		return
	}

	logger.Info("HTTP_OUT: Запись обновлена",
		zap.Int64("todo_id", updated.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTodo(updated))
}

func (s *TodoHandler) DeleteTodoByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.TodoService.DeleteTodo(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_todo")
		return
	}

	logger.Info("HTTP_OUT: Запись удалена",
		zap.Int64("todo_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("message", msgDeleted))
}

// APIHealth не обращается к хранилищу
func (s *TodoHandler) APIHealth(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	responseWithData(w, http.StatusOK, dto.HealthResponse{
		Status:    healthStatusValue,
		Message:   msgHealthy,
		Timestamp: s.clock().UTC(),
	})
}

func (s *TodoHandler) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *TodoHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(r)
	if !ok {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusNotFound, msgNotFound)
		return 0, false
	}
	return id, true
}

func (s *TodoHandler) jsonContent(w http.ResponseWriter, r *http.Request) bool {
	if checkContentType(r, "application/json") {
		return true
	}

	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusBadRequest, msgContentType)
	return false
}

var errTrailingData = errors.New("лишние данные после JSON")

// decodeBody возвращает empty=true, если тело пустое. Тело должно содержать ровно одно JSON значение.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (bool, error) {
	if r.Body == nil {
		return true, nil
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return false, errTrailingData
	}
	return false, nil
}
