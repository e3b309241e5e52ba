package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	// StatusTimeout marks an exchange that produced no HTTP response:
	// timeouts, refused connections, DNS and TLS failures. It is never a
	// status received from a server.
	StatusTimeout = 599

	// ReasonTimeout is the reason attached to StatusTimeout failures.
	ReasonTimeout = "API Timeout"

	// ReasonUnknown is used when a status has no known reason phrase.
	ReasonUnknown = "Unknown"
)

// TransportError is the normalized failure of a single exchange.
//
// Exactly one TransportError is produced per failed Send. It carries the
// request that failed, the status code (StatusTimeout when no response was
// received), a reason phrase and, for HTTP failures, the buffered response.
//
// Use errors.As to recover it:
//
//	var terr *httpclient.TransportError
//	if errors.As(err, &terr) && terr.IsTimeout() {
//	    // no response was received
//	}
type TransportError struct {
	// Request is the request that failed.
	Request *Request

	// Code is the HTTP status, or StatusTimeout.
	Code int

	// Reason is the reason phrase for Code.
	Reason string

	// Response is the non-2xx response, nil when none was received.
	Response *Response

	// Err is the underlying transport error, nil for HTTP statuses.
	Err error

	errorType string
}

// Error implements error.
func (e *TransportError) Error() string {
	if e.Request == nil {
		return fmt.Sprintf("%d %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Request.Method, e.Request.URL, e.Code, e.Reason)
}

// Unwrap returns the underlying transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether no HTTP response was received.
func (e *TransportError) IsTimeout() bool {
	return e.Code == StatusTimeout
}

// ErrorType classifies the failure: the status code as a string for HTTP
// failures, or one of the ErrorType* constants for transport failures.
func (e *TransportError) ErrorType() string {
	if e.errorType != "" {
		return e.errorType
	}
	return strconv.Itoa(e.Code)
}

// AsTransportError returns the *TransportError in err's chain, if any.
func AsTransportError(err error) (*TransportError, bool) {
	var terr *TransportError
	if errors.As(err, &terr) {
		return terr, true
	}
	return nil, false
}

// StatusText returns the standard reason phrase for code, or ReasonUnknown.
func StatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return ReasonUnknown
}

// newStatusError normalizes a non-2xx response.
func newStatusError(req *Request, resp *Response) *TransportError {
	reason := resp.Reason()
	if reason == "" {
		reason = StatusText(resp.StatusCode)
	}
	return &TransportError{
		Request:  req,
		Code:     resp.StatusCode,
		Reason:   reason,
		Response: resp,
	}
}

// newTimeoutError normalizes a failure where no response was received.
func newTimeoutError(req *Request, err error) *TransportError {
	return &TransportError{
		Request:   req,
		Code:      StatusTimeout,
		Reason:    ReasonTimeout,
		Err:       err,
		errorType: classifyError(err),
	}
}

// reasonPhrase extracts the reason from a status line such as
// "404 Not Found". net/http writes "status code 593" for codes it has no
// text for; that placeholder is treated as no reason.
func reasonPhrase(status string, code int) string {
	codeStr := strconv.Itoa(code)
	reason := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), codeStr))
	if reason == "status code "+codeStr {
		return ""
	}
	return reason
}
