package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeClose(t *testing.T) {
	t.Run("closes response body without logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("short_name,name\n"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)

		SafeCloseWithLogging(resp.Body, logger, "stations_feed_body")

		assert.NotContains(t, buf.String(), `"level":"ERROR"`)
	})

	t.Run("logs error when close fails", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(&errorCloser{err: assert.AnError}, logger, "trips_feed_body",
			slog.String("source", "https://example.com/trips.csv"))

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"msg":"close failed"`)
		assert.Contains(t, output, `"operation":"trips_feed_body"`)
		assert.Contains(t, output, `"source":"https://example.com/trips.csv"`)
	})

	t.Run("ignores nil closer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(nil, logger, "nothing")

		assert.Empty(t, buf.String())
	})
}

func TestHandleDeferredError(t *testing.T) {
	t.Run("surfaces deferred error when the function succeeded", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		testFunc := func() (err error) {
			defer HandleDeferredError(&err, func() error {
				return assert.AnError
			}, logger, "close_trips_file")

			return nil
		}

		err := testFunc()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "close_trips_file")
		assert.True(t, errors.Is(err, assert.AnError))

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"msg":"deferred operation failed"`)
	})

	t.Run("keeps the original error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		originalError := errors.New("malformed header")

		testFunc := func() (err error) {
			defer HandleDeferredError(&err, func() error {
				return assert.AnError
			}, logger, "close_trips_file")

			return originalError
		}

		err := testFunc()
		assert.Equal(t, originalError, err)
		assert.Contains(t, buf.String(), `"msg":"deferred operation failed"`)
	})

	t.Run("nil deferred op is a no-op", func(t *testing.T) {
		var err error
		HandleDeferredError(&err, nil, nil, "noop")
		assert.NoError(t, err)
	})
}

type errorCloser struct {
	err error
}

func (e *errorCloser) Close() error {
	return e.err
}
