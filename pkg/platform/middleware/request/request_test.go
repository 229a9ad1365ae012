package request

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confessional/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(dst *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = requestcontext.RequestID(r.Context())
		}))
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a valid client ID", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		capture(&got).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "trace.span_1234", got)
	})

	t.Run("replaces IDs that could pollute logs", func(t *testing.T) {
		for _, bad := range []string{"valid\ninjected", "has space", `q"uote`, strings.Repeat("a", MaxRequestIDLength+1)} {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", bad)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, bad, got)
			assert.Len(t, got, 36)
		}
	})
}

func TestTime(t *testing.T) {
	var first, second time.Time
	handler := Time(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, first, second)
}

func TestOperationTimeout(t *testing.T) {
	var deadline time.Time
	var ok bool
	handler := OperationTimeout(10 * time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), deadline, time.Second)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestLoggerRecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Get("/confessions/{id}", func(w http.ResponseWriter, r *http.Request) {})
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {})

	confessionID := "4f7d8a52-1111-4c1e-9d55-2a3f0c7b9e10"
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/confessions/"+confessionID, nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	logged := buf.String()
	assert.Contains(t, logged, "route=/confessions/{id}")
	assert.NotContains(t, logged, confessionID)
	assert.NotContains(t, logged, "/health/live", "healthy probes are not logged")
}

func TestContentTypeJSON(t *testing.T) {
	handler := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLatencyWithNilMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Latency(nil))
	r.Get("/confessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/confessions/abc", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusOK, w.Code)
}
