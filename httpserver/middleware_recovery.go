package httpserver

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recovery returns middleware that turns a panic into a 500 reply
// {"message": "Internal Server Error"} and logs it with its stack.
//
// Example:
//
//	handler := httpserver.Recovery(logger)(myHandler)
func Recovery(logger zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("correlation_id", CorrelationIDFromContext(r.Context())).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				WriteError(w, http.StatusInternalServerError,
					http.StatusText(http.StatusInternalServerError))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
