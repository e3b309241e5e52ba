package upstream

import (
	"context"
	"net/http"
	"time"

	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
)

// Caller makes upstream requests on behalf of a server handler and decides
// what a failure turns into.
//
// A Caller is safe for concurrent use as long as its client's default
// headers are not changed concurrently; use ForRequest to get a per-request
// Caller with its own headers.
type Caller struct {
	client *httpclient.Client
	cfg    *config
}

// New creates a Caller that sends through client.
//
// Example:
//
//	caller := upstream.New(client,
//	    upstream.WithLogger(logger),
//	    upstream.WithMetrics(upstream.NewMetrics(prometheus.DefaultRegisterer)),
//	)
func New(client *httpclient.Client, opts ...Option) *Caller {
	return &Caller{client: client, cfg: newConfig(opts...)}
}

// Client returns the client requests are sent with.
func (c *Caller) Client() *httpclient.Client {
	return c.client
}

// ForRequest returns a Caller whose requests carry the correlation id of r
// in the correlation header. The receiver and its client are not changed.
//
// Without a correlation id in r's context the returned Caller shares the
// receiver's client.
func (c *Caller) ForRequest(r *http.Request) *Caller {
	id := httpserver.CorrelationIDFromContext(r.Context())
	if id == "" {
		return c
	}

	client := c.client.Fork()
	client.SetDefaultHeader(c.cfg.correlationHeader, id)

	return &Caller{client: client, cfg: c.cfg}
}

// MakeRequest sends a request and waits for its outcome, handling failures
// with the Caller's error handler.
//
// See MakeRequestWith.
func (c *Caller) MakeRequest(
	ctx context.Context,
	method, scheme, host string,
	opts ...httpclient.RequestOption,
) (*httpclient.Response, error) {
	return c.MakeRequestWith(ctx, nil, method, scheme, host, opts...)
}

// MakeRequestWith sends a request and waits for its outcome.
//
// A 2xx response is returned as is. A failure is logged as
// "<METHOD> <URL> resulted in <code> <reason>", at error level for codes
// below 500 and at warn level otherwise (599 included), then handed to
// onError, or to the Caller's handler when onError is nil. The handler's
// return values are the result.
//
// Only the calling goroutine waits; other requests proceed concurrently.
// If ctx ends before the outcome is known, ctx.Err() is returned and no
// handler runs.
func (c *Caller) MakeRequestWith(
	ctx context.Context,
	onError ErrorHandler,
	method, scheme, host string,
	opts ...httpclient.RequestOption,
) (*httpclient.Response, error) {
	start := time.Now()

	call := c.client.Send(ctx, method, scheme, host, opts...)
	resp, err := call.Wait(ctx)
	if err == nil {
		c.cfg.metrics.observe(method, OutcomeSuccess, time.Since(start))
		return resp, nil
	}

	terr, ok := httpclient.AsTransportError(err)
	if !ok {
		c.cfg.metrics.observe(method, OutcomeAbandoned, time.Since(start))
		return nil, err
	}

	c.cfg.metrics.observe(method, OutcomeFailure, time.Since(start))
	c.cfg.metrics.failure(terr)
	c.logFailure(terr)

	if onError == nil {
		onError = c.cfg.onError
	}
	return onError(c, call.Request(), terr)
}

func (c *Caller) logFailure(err *httpclient.TransportError) {
	event := c.cfg.logger.Warn()
	if err.Code < 500 {
		event = c.cfg.logger.Error()
	}

	var method, url string
	if err.Request != nil {
		method, url = err.Request.Method, err.Request.URL
	}

	event.
		Str("method", method).
		Str("url", url).
		Int("code", err.Code).
		Str("reason", err.Reason).
		Str("error_type", err.ErrorType()).
		Msgf("%s %s resulted in %d %s", method, url, err.Code, err.Reason)
}
