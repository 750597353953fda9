package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

type loggerKey struct{}

// NewStructuredLogger returns a JSON logger writing to w at level and above.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a configured level name to a slog.Level. Unknown names map to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogError logs message at error level with err under the "error" key.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	if err != nil {
		attrs = append([]slog.Attr{slog.String("error", err.Error())}, attrs...)
	}
	logger.LogAttrs(context.Background(), slog.LevelError, message, attrs...)
}

// LogOperation logs a completed operation at info level. A zero "duration"
// attribute is dropped.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	kept := attrs[:0:0]
	for _, attr := range attrs {
		if attr.Key == "duration" && attr.Value.Kind() == slog.KindDuration && attr.Value.Duration() == 0 {
			continue
		}
		kept = append(kept, attr)
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, kept...)
}

// LogHTTPRequest logs one served request. Server errors log at error level
// and client errors at warn.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}

	attrs = append([]slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}, attrs...)
	logger.LogAttrs(context.Background(), level, "http_request", attrs...)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, slog.Default())
}

// FromContextOr returns the logger stored in ctx, or fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
