package httpclient

import (
	"context"
	"io"
	"sync/atomic"
)

// CallState is the progress of a Call.
type CallState int32

const (
	// CallPending means the exchange has been dispatched and not finished.
	CallPending CallState = iota

	// CallSucceeded means a 2xx response is available.
	CallSucceeded

	// CallFailed means a *TransportError is available.
	CallFailed
)

// String returns the state name.
func (s CallState) String() string {
	switch s {
	case CallPending:
		return "pending"
	case CallSucceeded:
		return "succeeded"
	case CallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Call is the handle of an exchange started by Send.
//
// The exchange runs on its own goroutine; Wait blocks only the goroutine
// that calls it. A Call resolves exactly once, with either a *Response or a
// *TransportError.
type Call struct {
	req   *Request
	done  chan struct{}
	state atomic.Int32
	resp  *Response
	err   *TransportError
}

// Request returns the request this call is sending.
func (c *Call) Request() *Request {
	return c.req
}

// Done is closed once the call has resolved.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// State returns the current state of the call.
func (c *Call) State() CallState {
	return CallState(c.state.Load())
}

// Wait blocks until the call resolves or ctx ends.
//
// On failure the error is a *TransportError. If ctx ends first, ctx.Err()
// is returned and the exchange keeps running until it completes or its own
// timeout expires; its result is then discarded.
func (c *Call) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-c.done:
		return c.result()
	default:
	}

	select {
	case <-c.done:
		return c.result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Call) result() (*Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func (c *Call) resolve(resp *Response, err *TransportError) {
	c.resp, c.err = resp, err
	if err != nil {
		c.state.Store(int32(CallFailed))
	} else {
		c.state.Store(int32(CallSucceeded))
	}
	close(c.done)
}

// Send builds a request and starts it without waiting for the result.
//
// The URL is scheme://host[:port]/seg1/seg2/... built from the Path and Port
// options; the headers are the client's default headers overlaid with the
// Header/Headers options. The request is logged at debug level as
// "sending <METHOD> <URL>" before any I/O starts.
//
// ctx supplies values (trace context) to the exchange but its cancellation
// does not stop it; use the Timeout option to bound the exchange.
//
// Example:
//
//	call := client.Send(ctx, http.MethodPost, "https", "api.example.com",
//	    httpclient.Path("orders"),
//	    httpclient.Header("Content-Type", "application/json"),
//	    httpclient.Body(payload),
//	    httpclient.Timeout(3*time.Second),
//	)
//	resp, err := call.Wait(ctx)
func (c *Client) Send(
	ctx context.Context,
	method, scheme, host string,
	opts ...RequestOption,
) *Call {
	req := c.newRequest(method, scheme, host, opts)
	call := &Call{req: req, done: make(chan struct{})}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL).
		Msgf("sending %s %s", req.Method, req.URL)

	go func() {
		call.resolve(c.exchange(ctx, req))
	}()

	return call
}

// Do sends a request and waits for its result.
//
// It is Send followed by Wait with the same context.
func (c *Client) Do(
	ctx context.Context,
	method, scheme, host string,
	opts ...RequestOption,
) (*Response, error) {
	return c.Send(ctx, method, scheme, host, opts...).Wait(ctx)
}

// exchange performs the round trip and reads the whole body.
func (c *Client) exchange(ctx context.Context, req *Request) (*Response, *TransportError) {
	ctx = context.WithoutCancel(ctx)

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.httpConfig.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := req.httpRequest(ctx)
	if err != nil {
		terr := newTimeoutError(req, err)
		terr.errorType = ErrorTypeInvalidRequest
		return nil, terr
	}

	//nolint:bodyclose // closed below once buffered
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, newTimeoutError(req, err)
	}

	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, newTimeoutError(req, err)
	}

	resp := &Response{Response: httpResp, body: body}
	if !resp.IsSuccess() {
		return nil, newStatusError(req, resp)
	}

	return resp, nil
}
