package middleware_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/tenancy/internal/middleware"
)

// TestLoggingMiddleware tests the logging middleware
func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, nil))
	slog.SetDefault(logger)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middlewareFunc := middleware.LoggingMiddleware()

	middlewareHandler := middlewareFunc(testHandler)

	const path = "/test"

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, path, nil)

	rec := httptest.NewRecorder()

	middlewareHandler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	logOutput := buf.String()

	assertions := []string{
		"Request Completed",
		"Received Request",
		fmt.Sprintf("HttpStatus=%d", http.StatusOK),
	}

	for _, assertion := range assertions {
		assert.Contains(t, logOutput, assertion)
	}
}

type statusRecorder struct {
	statuses []int
}

func (s *statusRecorder) RequestServed(status int) {
	s.statuses = append(s.statuses, status)
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	rec := &statusRecorder{}

	handler := middleware.LoggingMiddleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for range 2 {
		req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/test", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, []int{http.StatusTeapot, http.StatusTeapot}, rec.statuses)
}
