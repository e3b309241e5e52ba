package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// HTTPError is a failure the host replies to with Status and Reason.
//
// Handlers return it (directly or wrapped) instead of writing an error
// response themselves; Handle and the framework adapters turn it into the
// response body {"message": Reason}.
type HTTPError struct {
	// Status is the HTTP status code sent to the client.
	Status int

	// Reason is the message sent to the client.
	Reason string

	// Err is the cause, if any. It is logged, never sent.
	Err error
}

// NewHTTPError creates an HTTPError without a cause.
func NewHTTPError(status int, reason string) *HTTPError {
	return &HTTPError{Status: status, Reason: reason}
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Reason, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Reason)
}

// Unwrap returns the cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// AsHTTPError returns the *HTTPError in err's chain. Any other non-nil error
// becomes a 500 with a generic reason.
func AsHTTPError(err error) *HTTPError {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr
	}
	return &HTTPError{
		Status: http.StatusInternalServerError,
		Reason: http.StatusText(http.StatusInternalServerError),
		Err:    err,
	}
}

// HandlerFunc is an http handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts fn to an http.Handler.
//
// A returned *HTTPError is written as {"message": Reason} with its Status.
// Any other error is logged and answered with 500.
//
// Example:
//
//	mux.Handle("/orders/{id}", httpserver.Handle(logger, func(w http.ResponseWriter, r *http.Request) error {
//	    resp, err := caller.ForRequest(r).MakeRequest(r.Context(), http.MethodGet, "https", host,
//	        httpclient.Path("orders", r.PathValue("id")))
//	    if err != nil {
//	        return err
//	    }
//	    _, err = w.Write(resp.Body())
//	    return err
//	}))
func Handle(logger zerolog.Logger, fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var herr *HTTPError
		if !errors.As(err, &herr) {
			logger.Error().
				Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", RequestIDFromContext(r.Context())).
				Msg("handler failed")
			herr = AsHTTPError(err)
		}

		WriteHTTPError(w, herr)
	})
}
