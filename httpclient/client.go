package httpclient

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Client sends requests built from scheme, host, port and path segments,
// merging its default headers into each one, and reports every failed
// exchange as a *TransportError.
//
// Create a Client using New():
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("billing"),
//	    httpclient.WithDefaultHeader("Accept", "application/json"),
//	)
//
//	call := client.Send(ctx, http.MethodGet, "https", "api.example.com",
//	    httpclient.Path("invoices", invoiceID),
//	)
//	resp, err := call.Wait(ctx)
//
// The default header set belongs to the Client. It may be changed between
// requests by its owner (SetDefaultHeader, DelDefaultHeader) but must not be
// changed concurrently with Send; use Fork to get an independently owned set.
type Client struct {
	// httpClient is the underlying HTTP client with transport chain.
	httpClient *http.Client

	// config holds all client configuration.
	config *internalConfig

	// defaultHeaders are merged into every request at dispatch time.
	defaultHeaders http.Header

	logger zerolog.Logger
}

// New creates a Client with OpenTelemetry instrumentation around either the
// transport built from Config or the one given with WithTransport.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithConfig(cfg),
//	    httpclient.WithLogger(logger),
//	)
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)

	httpClient := &http.Client{
		Transport: newOtelTransport(cfg.baseTransport(), cfg),
	}

	return newClient(httpClient, cfg)
}

// NewWithTransport creates a Client using a custom base transport
// with OpenTelemetry instrumentation wrapped around it.
//
// Example:
//
//	transport := &http.Transport{DisableCompression: true}
//	client := httpclient.NewWithTransport(transport,
//	    httpclient.WithServiceName("my-service"),
//	)
func NewWithTransport(base http.RoundTripper, opts ...Option) *Client {
	return New(append(opts, WithTransport(base))...)
}

// WrapClient wraps an existing http.Client's transport with OpenTelemetry
// instrumentation and uses it for all exchanges.
//
// This modifies the client in-place. If the client has no transport,
// http.DefaultTransport is used. The http.Client's own Timeout still applies
// on top of per-request timeouts.
func WrapClient(httpClient *http.Client, opts ...Option) *Client {
	cfg := newConfig(opts...)

	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = newOtelTransport(base, cfg)

	return newClient(httpClient, cfg)
}

func newClient(httpClient *http.Client, cfg *internalConfig) *Client {
	return &Client{
		httpClient:     httpClient,
		config:         cfg,
		defaultHeaders: cfg.DefaultHeaders.Clone(),
		logger:         cfg.Logger,
	}
}

// HTTP returns the underlying *http.Client for advanced use cases.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// DefaultHeaders returns a copy of the default header set.
func (c *Client) DefaultHeaders() http.Header {
	return c.defaultHeaders.Clone()
}

// SetDefaultHeader sets a default header, replacing any value with the same
// case-insensitive name. Requests dispatched earlier are not affected.
func (c *Client) SetDefaultHeader(key, value string) {
	c.defaultHeaders.Set(key, value)
}

// DelDefaultHeader removes a default header.
func (c *Client) DelDefaultHeader(key string) {
	c.defaultHeaders.Del(key)
}

// Fork returns a Client sharing this client's transport and configuration
// but owning a separate copy of the default header set.
//
// Fork is how a per-request component gets its own headers (for instance a
// correlation id) without touching a process-wide client:
//
//	scoped := client.Fork()
//	scoped.SetDefaultHeader("Correlation-ID", id)
func (c *Client) Fork() *Client {
	return &Client{
		httpClient:     c.httpClient,
		config:         c.config,
		defaultHeaders: c.defaultHeaders.Clone(),
		logger:         c.logger,
	}
}
