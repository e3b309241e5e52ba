package httpserver

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Response is the JSON envelope of every reply written by this package.
//
// Failures are written with only Message set:
//
//	{"message": "API Timeout"}
//
// Success replies carry Data:
//
//	{"data": {"id": 42}, "message": "order fetched"}
type Response[T any] struct {
	Data    T       `json:"data,omitempty"`
	Errors  []Error `json:"errors,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Error is a field-level validation error.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteJSON writes response with statusCode.
//
// An encoding failure is logged; the status has already been sent by then.
func WriteJSON[T any](w http.ResponseWriter, statusCode int, response Response[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().
			Err(err).
			Int("status_code", statusCode).
			Msg("failed to encode JSON response")
	}
}

// WriteError writes {"message": message} with statusCode, plus any field
// errors.
//
// Example:
//
//	httpserver.WriteError(w, http.StatusServiceUnavailable, "API Timeout")
func WriteError(w http.ResponseWriter, statusCode int, message string, errors ...Error) {
	WriteJSON(w, statusCode, Response[any]{
		Errors:  errors,
		Message: message,
	})
}

// WriteHTTPError writes err as WriteError does.
func WriteHTTPError(w http.ResponseWriter, err *HTTPError) {
	WriteError(w, err.Status, err.Reason)
}

// WriteSuccess writes data with statusCode.
func WriteSuccess[T any](w http.ResponseWriter, statusCode int, data T, message string) {
	WriteJSON(w, statusCode, Response[T]{
		Data:    data,
		Message: message,
	})
}
