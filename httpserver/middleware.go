package httpserver

import "net/http"

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware; the first one is the outermost.
//
// Example:
//
//	handler := httpserver.Chain(
//	    httpserver.Recovery(logger),
//	    httpserver.RequestID(),
//	    httpserver.CorrelationID(),
//	)(myHandler)
//
// Request flow:
//
//	Recovery -> RequestID -> CorrelationID -> myHandler
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// DefaultMiddleware returns the stack every upstream-calling service needs:
//  1. Recovery (only with WithDefaultLogger)
//  2. RequestID
//  3. CorrelationID, so Caller.ForRequest can forward it
//  4. Logger (only with WithDefaultLogger)
//
// Example:
//
//	handler := httpserver.DefaultMiddleware(
//	    httpserver.WithDefaultLogger(httpserver.LoggerConfig{Logger: logger}),
//	)(mux)
func DefaultMiddleware(opts ...MiddlewareOption) Middleware {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		return Chain(RequestID(), CorrelationID())
	}

	return Chain(
		Recovery(cfg.logger.Logger),
		RequestID(),
		CorrelationID(),
		Logger(*cfg.logger),
	)
}

type middlewareConfig struct {
	logger *LoggerConfig
}

// MiddlewareOption configures DefaultMiddleware.
type MiddlewareOption func(*middlewareConfig)

// WithDefaultLogger adds recovery and request logging to DefaultMiddleware.
func WithDefaultLogger(cfg LoggerConfig) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.logger = &cfg
	}
}
