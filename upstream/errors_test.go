package upstream

import (
	"net/http"
	"testing"

	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	withResponse := func(code int, status string) *httpclient.Response {
		return &httpclient.Response{Response: &http.Response{StatusCode: code, Status: status}}
	}

	tests := []struct {
		name       string
		err        *httpclient.TransportError
		wantStatus int
		wantReason string
	}{
		{
			name:       "given 599, then 503 API Timeout",
			err:        &httpclient.TransportError{Code: 599, Reason: "API Timeout"},
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "API Timeout",
		},
		{
			name:       "given 599 with other reason, then still API Timeout",
			err:        &httpclient.TransportError{Code: 599, Reason: "whatever"},
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "API Timeout",
		},
		{
			name: "given response reason, then response reason wins",
			err: &httpclient.TransportError{
				Code: 418, Reason: "I'm a teapot", Response: withResponse(418, "418 Short and stout"),
			},
			wantStatus: 418,
			wantReason: "Short and stout",
		},
		{
			name:       "given no response, then error reason",
			err:        &httpclient.TransportError{Code: 409, Reason: "Already Exists"},
			wantStatus: 409,
			wantReason: "Already Exists",
		},
		{
			name:       "given nothing, then standard text",
			err:        &httpclient.TransportError{Code: 404},
			wantStatus: 404,
			wantReason: "Not Found",
		},
		{
			name:       "given unknown code and nothing, then Unknown",
			err:        &httpclient.TransportError{Code: 593, Response: withResponse(593, "593 status code 593")},
			wantStatus: 593,
			wantReason: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateError(tt.err)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Same(t, tt.err, got.Err)
			assert.NotEqual(t, 599, got.Status)
		})
	}
}

func TestDefaultErrorHandler(t *testing.T) {
	terr := &httpclient.TransportError{Code: 502, Reason: "Bad Gateway"}

	resp, err := DefaultErrorHandler(nil, nil, terr)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, terr)
	assert.EqualError(t, err, "502 Bad Gateway: 502 Bad Gateway")
}

func TestFailureClass(t *testing.T) {
	assert.Equal(t, ClassTimeout, FailureClass(&httpclient.TransportError{Code: 599}))
	assert.Equal(t, ClassServer, FailureClass(&httpclient.TransportError{Code: 503}))
	assert.Equal(t, ClassClient, FailureClass(&httpclient.TransportError{Code: 422}))
}
