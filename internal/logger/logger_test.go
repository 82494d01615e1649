package logger_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"todoService/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	previous := logger.Logger
	t.Cleanup(func() { logger.Logger = previous })

	for _, development := range []bool{true, false} {
		require.NoError(t, logger.Init("todo-api", development))
		assert.NotNil(t, logger.Logger)
	}
}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	previous := logger.Logger
	t.Cleanup(func() { logger.Logger = previous })

	core, logs := observer.New(zap.DebugLevel)
	logger.Logger = zap.New(core)
	return logs
}

// TestHttpRequestInfo_ContextFields тестирует request_id и trace_id из контекста запроса
func TestHttpRequestInfo_ContextFields(t *testing.T) {
	logs := observe(t)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	ctx := logger.WithRequestID(context.Background(), "req-42")
	ctx = trace.ContextWithRemoteSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))

	req := httptest.NewRequest("GET", "/api/todos", nil).WithContext(ctx)
	logger.HttpRequestInfo(req, "HTTP_IN:")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
}

// TestContextFields_Empty тестирует пустой контекст
func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, logger.ContextFields(context.Background()))
	assert.Equal(t, "", logger.RequestID(context.Background()))
}

func TestHelpers_WriteFields(t *testing.T) {
	logs := observe(t)

	req := httptest.NewRequest("GET", "/api/todos?x=1", nil)
	logger.HttpRequestInfo(req, "HTTP_IN:")
	logger.Error("Repository: сбой", errors.New("boom"), zap.Int64("todo_id", 3))
	logger.Warn("HTTP: предупреждение")

	entries := logs.All()
	require.Len(t, entries, 3)

	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/todos", fields["path"])
	assert.Equal(t, "x=1", fields["query"])

	errFields := entries[1].ContextMap()
	assert.Equal(t, "boom", errFields["error"])
	assert.Equal(t, int64(3), errFields["todo_id"])
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
}
