package httpserver

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header key for request IDs.
	RequestIDHeader = "X-Request-ID"

	// CorrelationIDHeader carries the id shared by every hop of one
	// logical operation, including outgoing upstream calls.
	CorrelationIDHeader = "Correlation-ID"
)

type (
	requestIDKey     struct{}
	correlationIDKey struct{}
)

// RequestID returns middleware that forwards X-Request-ID or generates a
// UUID v4, echoes it on the response and stores it in the context.
//
// Example:
//
//	handler := httpserver.RequestID()(myHandler)
//
//	func myHandler(w http.ResponseWriter, r *http.Request) {
//	    id := httpserver.RequestIDFromContext(r.Context())
//	}
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CorrelationID returns middleware that forwards the Correlation-ID header.
// Without one, the request id is reused when RequestID ran first, else a new
// UUID v4 is generated. The id is echoed on the response.
func CorrelationID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationIDHeader)
			if id == "" {
				id = RequestIDFromContext(r.Context())
			}
			if id == "" {
				id = uuid.New().String()
			}

			w.Header().Set(CorrelationIDHeader, id)
			next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), id)))
		})
	}
}

// RequestIDFromContext returns the request id, or "" if none.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationIDFromContext returns the correlation id, falling back to the
// request id. It returns "" when neither is present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok && id != "" {
		return id
	}
	return RequestIDFromContext(ctx)
}
