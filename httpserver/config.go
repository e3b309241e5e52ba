package httpserver

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the HTTP server configuration parameters.
//
// Use DefaultConfig(), ProductionConfig(), or DevelopmentConfig() to get
// a properly initialized configuration, then modify specific fields as needed.
//
// Example:
//
//	cfg := httpserver.DefaultConfig()
//	cfg.Addr = ":9090"
//
//	server := httpserver.New(
//	    httpserver.WithConfig(cfg),
//	    httpserver.WithHandler(mux),
//	)
type Config struct {
	// Addr is the TCP address to listen on.
	// Default: ":8080"
	Addr string

	// ServiceName identifies the service in spans and request logs.
	// Default: "http-server"
	ServiceName string

	// ReadTimeout bounds reading the entire request, body included.
	// Default: 15s
	ReadTimeout time.Duration

	// ReadHeaderTimeout bounds reading the request headers.
	// Default: 10s
	ReadHeaderTimeout time.Duration

	// WriteTimeout bounds writing the response. It must exceed the longest
	// upstream request timeout or 503 replies are cut off.
	// Default: 30s
	WriteTimeout time.Duration

	// IdleTimeout is how long a keep-alive connection waits for the next
	// request.
	// Default: 60s
	IdleTimeout time.Duration

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1MB
	MaxHeaderBytes int

	// TLSConfig enables HTTPS when set.
	TLSConfig *tls.Config

	// Logger receives lifecycle events (start, shutdown, errors).
	Logger zerolog.Logger

	// Middleware wraps Handler, first entry outermost, inside the
	// built-in tracing and logging middleware.
	Middleware []Middleware

	// Handler serves requests. Required.
	Handler http.Handler

	// ShutdownTimeout bounds graceful shutdown. In-flight upstream requests
	// get this long to finish before connections are closed.
	// Default: 10s
	ShutdownTimeout time.Duration

	// TracingConfig enables server spans.
	TracingConfig *TracingConfig

	// LoggerConfig enables request logging.
	LoggerConfig *LoggerConfig
}

// DefaultConfig returns a balanced configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              ":8080",
		ServiceName:       "http-server",
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ShutdownTimeout:   10 * time.Second,
	}
}

// ProductionConfig returns tighter read limits and a shutdown timeout that
// fits inside Kubernetes' default 30s termination grace period.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 10 * time.Second
	cfg.ReadHeaderTimeout = 5 * time.Second
	cfg.IdleTimeout = 30 * time.Second
	cfg.ShutdownTimeout = 25 * time.Second
	return cfg
}

// DevelopmentConfig disables read and write timeouts so handlers can be
// stepped through in a debugger. Do not use in production.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 0
	cfg.ReadHeaderTimeout = 0
	cfg.WriteTimeout = 0
	cfg.IdleTimeout = 120 * time.Second
	cfg.ShutdownTimeout = 3 * time.Second
	return cfg
}
