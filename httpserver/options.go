package httpserver

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Option configures the server.
type Option func(*Config)

// WithConfig replaces the whole configuration. Apply it before other options.
//
// Example:
//
//	cfg := httpserver.ProductionConfig()
//	cfg.Addr = ":9090"
//
//	server := httpserver.New(
//	    httpserver.WithConfig(cfg),
//	    httpserver.WithServiceName("orders-proxy"),
//	    httpserver.WithHandler(mux),
//	)
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// WithServiceName sets the service name used by tracing and request logs.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithHandler sets the HTTP handler for the server. Required.
func WithHandler(h http.Handler) Option {
	return func(c *Config) {
		c.Handler = h
	}
}

// WithLogger sets the logger for lifecycle events. For per-request logs use
// WithLogging.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMiddleware appends middleware around the handler.
//
// Example:
//
//	server := httpserver.New(
//	    httpserver.WithHandler(mux),
//	    httpserver.WithMiddleware(
//	        httpserver.Recovery(logger),
//	        httpserver.RequestID(),
//	        httpserver.CorrelationID(),
//	    ),
//	)
func WithMiddleware(ms ...Middleware) Option {
	return func(c *Config) {
		c.Middleware = append(c.Middleware, ms...)
	}
}

// WithTracing enables OpenTelemetry server spans. The server's ServiceName
// is applied to every span.
func WithTracing(cfg TracingConfig) Option {
	return func(c *Config) {
		c.TracingConfig = &cfg
	}
}

// WithLogging enables request logging. The server's ServiceName is added to
// every entry.
//
// Example:
//
//	server := httpserver.New(
//	    httpserver.WithServiceName("orders-proxy"),
//	    httpserver.WithLogging(httpserver.LoggerConfig{
//	        Logger:    logger,
//	        SkipPaths: []string{"/livez", "/readyz", "/metrics"},
//	    }),
//	    httpserver.WithHandler(mux),
//	)
func WithLogging(cfg LoggerConfig) Option {
	return func(c *Config) {
		c.LoggerConfig = &cfg
	}
}
