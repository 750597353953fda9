package logging

import (
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes closer and logs a failure under operation.
// Extra attrs are appended to the log line.
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		attrs = append([]slog.Attr{slog.String("operation", operation)}, attrs...)
		LogError(logger, "close failed", err, attrs...)
	}
}

// HandleDeferredError runs op, typically a Close deferred on a feed body, and
// reports its failure through *errp unless an earlier error is already set.
// The failure is logged either way.
func HandleDeferredError(errp *error, op func() error, logger *slog.Logger, operation string) {
	if op == nil {
		return
	}
	err := op()
	if err == nil {
		return
	}

	LogError(logger, "deferred operation failed", err, slog.String("operation", operation))
	if errp != nil && *errp == nil {
		*errp = fmt.Errorf("%s failed: %w", operation, err)
	}
}
