// Package observability carries the gallery's logging, tracing and HTTP
// metrics. The server and the photo-upload command share it; both log through
// zerolog and export over OTLP when enabled.
package observability

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog logger that stamps each event with the active span
type Logger struct {
	logger zerolog.Logger
}

// NewLogger logs to stdout
func NewLogger(config Config) *Logger {
	return NewLoggerWithWriter(config, os.Stdout)
}

// NewLoggerWithWriter logs to out. photo-upload passes stderr so stdout only
// carries the per-file results.
func NewLoggerWithWriter(config Config, out io.Writer) *Logger {
	var w io.Writer = out
	switch config.LogFormat {
	case "console", "text":
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return &Logger{
		logger: zerolog.New(w).
			Level(parseLogLevel(config.LogLevel)).
			With().
			Timestamp().
			Str("service", config.ServiceName).
			Str("version", config.ServiceVersion).
			Str("environment", config.Environment).
			Logger(),
	}
}

// NewNopLogger discards everything
func NewNopLogger() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// parseLogLevel accepts zerolog level names plus "warning". Unknown or empty
// names log at info.
func parseLogLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// forSpan adds trace_id, span_id and trace_sampled when ctx carries a span,
// so upload and request logs line up with their traces
func (l *Logger) forSpan(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return &l.logger
	}
	logger := l.logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Bool("trace_sampled", sc.IsSampled()).
		Logger()
	return &logger
}

func (l *Logger) Debug(ctx context.Context) *zerolog.Event { return l.forSpan(ctx).Debug() }

func (l *Logger) Info(ctx context.Context) *zerolog.Event { return l.forSpan(ctx).Info() }

func (l *Logger) Warn(ctx context.Context) *zerolog.Event { return l.forSpan(ctx).Warn() }

func (l *Logger) Error(ctx context.Context) *zerolog.Event { return l.forSpan(ctx).Error() }

// OTELErrorHandler logs failed exports and other SDK errors
func (l *Logger) OTELErrorHandler() func(error) {
	return func(err error) {
		l.logger.Error().Err(err).Str("source", "otel_sdk").Msg("Telemetry export error")
	}
}
