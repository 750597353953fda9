package restapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bikeflow.dev/internal/logging"
)

// RequestIDHeader carries the id that ties a request to its log lines.
const RequestIDHeader = "X-Request-ID"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// NewRequestLoggingMiddleware logs each request and makes a request scoped
// logger, tagged with the request id, available to handlers.
func NewRequestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			requestLogger := logger.With(slog.String("request_id", requestID))
			r = r.WithContext(logging.WithLogger(r.Context(), requestLogger))

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			logging.LogHTTPRequest(requestLogger,
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				float64(time.Since(start).Nanoseconds())/1e6,
				slog.String("user_agent", r.Header.Get("User-Agent")),
				slog.String("component", "http_server"))
		})
	}
}
