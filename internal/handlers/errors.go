package handlers

import (
	"net/http"
	"todoService/internal/logger"
	"todoService/internal/service"

	"go.uber.org/zap"
)

const internalErrorMessage = "Internal server error"

// handleServiceError пишет ответ для любой ошибки сервиса
func handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, internalErrorMessage)
}

func handleBusinessError(w http.ResponseWriter, err error) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	fields := []zap.Field{
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
		zap.Any("details", businessErr.Details),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: Бизнес-ошибка", businessErr, fields...)
	} else {
		logger.Warn("HTTP: Бизнес-ошибка", fields...)
	}

	responseWithError(w, statusCode, businessErr.Message)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodePersistence, service.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
