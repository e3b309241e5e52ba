package upstream

import (
	"net/http"

	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
)

// ErrorHandler decides the outcome of a failed request.
//
// It receives the caller that made the request, the request descriptor and
// the normalized failure. Whatever it returns is the result of MakeRequest:
// a response recovers the call, an error is propagated unchanged.
type ErrorHandler func(
	c *Caller,
	req *httpclient.Request,
	err *httpclient.TransportError,
) (*httpclient.Response, error)

// DefaultErrorHandler fails the call with TranslateError(err), ready to be
// written by the hosting server.
func DefaultErrorHandler(
	_ *Caller,
	_ *httpclient.Request,
	err *httpclient.TransportError,
) (*httpclient.Response, error) {
	return nil, TranslateError(err)
}

// TranslateError maps a transport failure to the reply the hosting server
// sends.
//
// A failure without a response (599) becomes 503 "API Timeout"; 599 never
// reaches a client. Any other code is kept, with the first non-empty reason
// of: the response status line, the failure's reason, the standard status
// text, "Unknown".
func TranslateError(err *httpclient.TransportError) *httpserver.HTTPError {
	if err.IsTimeout() {
		return &httpserver.HTTPError{
			Status: http.StatusServiceUnavailable,
			Reason: httpclient.ReasonTimeout,
			Err:    err,
		}
	}

	var reason string
	if err.Response != nil {
		reason = err.Response.Reason()
	}
	if reason == "" {
		reason = err.Reason
	}
	if reason == "" {
		reason = httpclient.StatusText(err.Code)
	}

	return &httpserver.HTTPError{
		Status: err.Code,
		Reason: reason,
		Err:    err,
	}
}
