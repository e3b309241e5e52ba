package httpserver

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig configures the logging middleware.
type LoggerConfig struct {
	Logger zerolog.Logger

	// serviceName is set by the server.
	serviceName string

	// SkipPaths are not logged, e.g. probes and /metrics.
	SkipPaths []string
}

// Logger returns middleware that logs one entry per request: info for 2xx
// and 3xx, warn for 4xx, error for 5xx.
//
// The request and correlation ids are read from the response headers, so
// RequestID and CorrelationID may run inside this middleware.
//
// Example:
//
//	handler := httpserver.Logger(httpserver.LoggerConfig{
//	    Logger:    logger,
//	    SkipPaths: []string{"/livez", "/readyz"},
//	})(myHandler)
func Logger(cfg LoggerConfig) Middleware {
	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			status := wrapped.Status()
			event := cfg.Logger.Info()
			switch {
			case status >= 500:
				event = cfg.Logger.Error()
			case status >= 400:
				event = cfg.Logger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Int("bytes", wrapped.BytesWritten()).
				Str("remote_addr", r.RemoteAddr)

			if cfg.serviceName != "" {
				event.Str("service", cfg.serviceName)
			}
			if id := wrapped.Header().Get(RequestIDHeader); id != "" {
				event.Str("request_id", id)
			}
			if id := wrapped.Header().Get(CorrelationIDHeader); id != "" {
				event.Str("correlation_id", id)
			}

			event.Msg("request completed")
		})
	}
}
