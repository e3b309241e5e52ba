package upstream

import (
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/rs/zerolog"
)

type config struct {
	logger            zerolog.Logger
	onError           ErrorHandler
	metrics           *Metrics
	correlationHeader string
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger:            zerolog.Nop(),
		correlationHeader: httpserver.CorrelationIDHeader,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.onError == nil {
		cfg.onError = DefaultErrorHandler
	}
	return cfg
}

// Option configures a Caller.
type Option func(*config)

// WithLogger sets the logger failed requests are reported to.
//
// Default: zerolog.Nop()
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithErrorHandler sets the handler used when MakeRequest is not given one.
// Nil restores DefaultErrorHandler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		c.onError = h
	}
}

// WithMetrics records request outcomes on m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithCorrelationHeader sets the header ForRequest propagates the
// correlation id in.
//
// Default: "Correlation-ID"
func WithCorrelationHeader(name string) Option {
	return func(c *config) {
		c.correlationHeader = name
	}
}
