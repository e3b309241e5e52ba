package httpclient

import (
	"net/http"
)

// Response wraps http.Response with the body already read.
//
// The exchange reads the whole body before the Call resolves, so a Response
// can be inspected any number of times and needs no Close.
//
// Example usage:
//
//	resp, err := client.Do(ctx, http.MethodGet, "https", "api.example.com",
//	    httpclient.Path("users"),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.StatusCode, resp.String())
type Response struct {
	// Response embeds the standard http.Response.
	// Its Body has been drained and closed; use Body() instead.
	*http.Response

	body []byte
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.body)
}

// Reason returns the reason phrase of the status line, or "" when the
// server sent none.
func (r *Response) Reason() string {
	return reasonPhrase(r.Status, r.StatusCode)
}

// IsSuccess returns true if the response status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
