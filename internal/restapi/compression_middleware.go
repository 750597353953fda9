package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// CompressionConfig holds configuration options for response compression
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes to compress
	MinSize int
	// Level is the gzip level, 1-9
	Level int
	// ContentTypes limits compression to these media types
	ContentTypes []string
}

func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:      1024,
		Level:        6,
		ContentTypes: []string{"application/json", "text/html", "text/plain"},
	}
}

// NewCompressionMiddleware creates a compression middleware with the given configuration
func NewCompressionMiddleware(config CompressionConfig) func(http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(config.MinSize),
		gzhttp.CompressionLevel(config.Level),
		gzhttp.ContentTypes(config.ContentTypes),
	)
	if err != nil {
		return func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) }
	}
	return func(next http.Handler) http.Handler { return wrapper(next) }
}

// CompressionMiddleware applies gzip compression with default settings
func CompressionMiddleware(next http.Handler) http.Handler {
	return NewCompressionMiddleware(DefaultCompressionConfig())(next)
}
