package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestRoutePattern(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			seen = routePattern(req)
		})
	})
	r.Get("/api/photos/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/photos/42", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/api/photos/{id}", seen)

	plain := httptest.NewRequest(http.MethodGet, "/raw/path", nil)
	assert.Equal(t, "/raw/path", routePattern(plain))
}

func TestMiddlewares_PassThrough(t *testing.T) {
	metrics, err := NewHTTPMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	tracer := tracenoop.NewTracerProvider().Tracer("test")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	handler := MetricsMiddleware(metrics)(TracingMiddleware(tracer)(inner))

	for _, path := range []string{"/api/photos", healthzPath} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code, path)
		assert.Equal(t, "short and stout", rec.Body.String(), path)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{
		ServiceName:    "photo-gallery",
		ServiceVersion: "test",
		Environment:    "test",
		LogLevel:       "debug",
		LogFormat:      "json",
	}, &buf)

	logger.Info(context.Background()).Str("file", "a.jpg").Msg("uploaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "uploaded", entry["message"])
	assert.Equal(t, "a.jpg", entry["file"])
	assert.Equal(t, "photo-gallery", entry["service"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{ServiceName: "svc", LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info(context.Background()).Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn(context.Background()).Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLogLevel("debug").String())
	assert.Equal(t, "warn", parseLogLevel("warning").String())
	assert.Equal(t, "info", parseLogLevel("bogus").String())
}

func TestNewNopLogger(t *testing.T) {
	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Error(context.Background()).Msg("discarded")
	})
}
