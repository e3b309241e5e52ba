package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/sentinel-upstream/httpclient"
)

// =============================================================================
// Config - HTTP Transport Configuration
// =============================================================================

// Config holds the transport timeouts used by the client.
// Use DefaultConfig() to get a properly initialized configuration,
// then modify specific fields as needed.
//
// Example:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Timeout = 5 * time.Second
//
//	client := httpclient.New(
//	    httpclient.WithConfig(cfg),
//	    httpclient.WithServiceName("payment-service"),
//	)
type Config struct {
	// Timeout bounds a whole exchange (connect, send, read body) when the
	// request does not carry its own Timeout. Zero means no limit.
	//
	// Default: 20s
	Timeout time.Duration

	// DialTimeout is the maximum time to wait for a TCP connection
	// to be established (before TLS handshake).
	//
	// A request to an address that never accepts the connection fails
	// after this long with a 599 TransportError.
	//
	// Default: 5s
	DialTimeout time.Duration

	// KeepAlive specifies the TCP keep-alive probe interval.
	//
	// Default: 30s
	KeepAlive time.Duration

	// TLSHandshakeTimeout is the maximum time to wait for a TLS handshake.
	//
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout is the time to wait for response headers
	// after the request is fully written. Zero means no timeout (uses Timeout).
	//
	// Default: 0
	ResponseHeaderTimeout time.Duration

	// IdleConnTimeout is how long an idle connection remains in the pool.
	//
	// Default: 90s
	IdleConnTimeout time.Duration
}

// DefaultConfig returns the configuration used when WithConfig is not given.
func DefaultConfig() Config {
	return Config{
		Timeout:               20 * time.Second,
		DialTimeout:           5 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 0,
		IdleConnTimeout:       90 * time.Second,
	}
}

// =============================================================================
// Internal Configuration
// =============================================================================

// internalConfig holds all configuration including HTTP transport and OTel settings.
type internalConfig struct {
	// HTTP transport configuration
	httpConfig Config

	// === OpenTelemetry Configuration ===

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *metrics

	// Propagators configures the context propagators.
	// Default: TraceContext + Baggage (W3C standard)
	Propagators propagation.TextMapPropagator

	// ServiceName is added as "http.client.name" attribute on spans.
	ServiceName string

	// EnableNetworkTrace adds DNS, connect, TLS and first-byte events to
	// spans and records their durations.
	EnableNetworkTrace bool

	// === Client Behaviour ===

	// Logger receives the per-request debug line and transport diagnostics.
	Logger zerolog.Logger

	// DefaultHeaders seeds the client's default header set.
	DefaultHeaders http.Header

	// BaseTransport replaces the transport built from httpConfig.
	BaseTransport http.RoundTripper

	// MockTransport, when set, is used as the base transport.
	MockTransport *MockTransport

	// TLSConfig specifies the TLS configuration.
	TLSConfig *tls.Config

	// ProxyURL specifies a proxy URL for requests.
	ProxyURL *url.URL

	// ProxyFromEnvironment uses HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
	// Default: true
	ProxyFromEnvironment bool
}

// newConfig creates a new internal config with defaults and applies options.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:           DefaultConfig(),
		TracerProvider:       otel.GetTracerProvider(),
		MeterProvider:        otel.GetMeterProvider(),
		Logger:               zerolog.Nop(),
		DefaultHeaders:       make(http.Header),
		ProxyFromEnvironment: true,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Propagators == nil {
		cfg.Propagators = propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	// Metrics are optional; a nil *metrics records nothing.
	cfg.Metrics, _ = newMetrics(cfg.Meter)

	return cfg
}

// baseTransport returns the innermost round tripper for the client.
func (cfg *internalConfig) baseTransport() http.RoundTripper {
	switch {
	case cfg.MockTransport != nil:
		return cfg.MockTransport
	case cfg.BaseTransport != nil:
		return cfg.BaseTransport
	default:
		return cfg.buildTransport()
	}
}

// buildTransport creates an http.Transport from the configuration.
func (cfg *internalConfig) buildTransport() *http.Transport {
	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		IdleConnTimeout:       hc.IdleConnTimeout,
		TLSHandshakeTimeout:   hc.TLSHandshakeTimeout,
		ResponseHeaderTimeout: hc.ResponseHeaderTimeout,
		TLSClientConfig:       cfg.TLSConfig,
		ForceAttemptHTTP2:     true,
	}

	if cfg.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(cfg.ProxyURL)
	} else if cfg.ProxyFromEnvironment {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return transport
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.ServiceName))
	}
	return attrs
}

// =============================================================================
// Options - Functional Options for Client Configuration
// =============================================================================

// Option configures the HTTP client.
type Option func(*internalConfig)

// WithConfig sets the transport timeouts.
//
// Example:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.DialTimeout = time.Second
//
//	client := httpclient.New(httpclient.WithConfig(cfg))
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithServiceName sets an identifier for this HTTP client in traces.
// This value is added as the "http.client.name" attribute on all spans.
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithLogger sets the logger the client writes its request lines to.
//
// Every dispatched request is logged at debug level as
// "sending <METHOD> <URL>" before any network I/O starts.
//
// Default: zerolog.Nop()
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.Logger = l
	}
}

// WithDefaultHeader adds a header to the client's default header set.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithDefaultHeader("Accept", "application/json"),
//	    httpclient.WithDefaultHeader("User-Agent", "billing/1.4"),
//	)
func WithDefaultHeader(key, value string) Option {
	return func(cfg *internalConfig) {
		cfg.DefaultHeaders.Set(key, value)
	}
}

// WithDefaultHeaders replaces same-named entries of the default header set.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(cfg *internalConfig) {
		for k, v := range headers {
			cfg.DefaultHeaders.Set(k, v)
		}
	}
}

// WithTransport sets the base round tripper wrapped by the instrumentation.
// When set, WithConfig transport settings are ignored.
func WithTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.BaseTransport = rt
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}

// WithPropagators sets custom context propagators for trace context injection.
// By default, W3C TraceContext and Baggage propagators are used.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *internalConfig) {
		cfg.Propagators = p
	}
}

// WithTLSConfig sets a custom TLS configuration.
//
// Example - Mutual TLS with client certificate:
//
//	cert, _ := tls.LoadX509KeyPair("client.crt", "client.key")
//	client := httpclient.New(
//	    httpclient.WithTLSConfig(&tls.Config{
//	        Certificates: []tls.Certificate{cert},
//	    }),
//	)
func WithTLSConfig(tlsCfg *tls.Config) Option {
	return func(cfg *internalConfig) {
		cfg.TLSConfig = tlsCfg
	}
}

// WithProxyURL sets a specific proxy URL for all requests.
// When set, this takes precedence over environment variables.
func WithProxyURL(proxyURL *url.URL) Option {
	return func(cfg *internalConfig) {
		cfg.ProxyURL = proxyURL
		cfg.ProxyFromEnvironment = false
	}
}

// WithProxyFromEnvironment enables or disables reading proxy settings
// from environment variables (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
//
// Default: true
func WithProxyFromEnvironment(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.ProxyFromEnvironment = enabled
	}
}

// WithNetworkTrace adds connection-level timing (DNS, connect, TLS, time to
// first byte) to every request span and to the timing histograms.
func WithNetworkTrace() Option {
	return func(cfg *internalConfig) {
		cfg.EnableNetworkTrace = true
	}
}
