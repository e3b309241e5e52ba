package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	type args struct {
		scheme   string
		host     string
		port     string
		segments []string
	}

	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "given host only, then no trailing slash",
			args: args{scheme: "http", host: "example.com"},
			want: "http://example.com",
		},
		{
			name: "given port, then host and port joined",
			args: args{scheme: "https", host: "example.com", port: "8443", segments: []string{"a"}},
			want: "https://example.com:8443/a",
		},
		{
			name: "given spaces and slashes in segments, then each segment escaped",
			args: args{
				scheme:   "http",
				host:     "127.0.0.1",
				segments: []string{"with spaces ", "and/with/slashes"},
			},
			want: "http://127.0.0.1/with%20spaces%20/and%2Fwith%2Fslashes",
		},
		{
			name: "given IPv6 host with port, then host bracketed",
			args: args{scheme: "http", host: "::1", port: "8080", segments: []string{"status"}},
			want: "http://[::1]:8080/status",
		},
		{
			name: "given bare IPv6 host, then host bracketed",
			args: args{scheme: "http", host: "fe80::1"},
			want: "http://[fe80::1]",
		},
		{
			name: "given already bracketed IPv6 host with port, then not double bracketed",
			args: args{scheme: "http", host: "[::1]", port: "80"},
			want: "http://[::1]:80",
		},
		{
			name: "given unicode segment, then percent encoded",
			args: args{scheme: "https", host: "example.com", segments: []string{"café"}},
			want: "https://example.com/caf%C3%A9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildURL(tt.args.scheme, tt.args.host, tt.args.port, tt.args.segments...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURL_SegmentRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
	}{
		{
			name:     "given plain segments, then recovered",
			segments: []string{"orders", "42"},
		},
		{
			name:     "given spaces and slashes, then recovered",
			segments: []string{"with spaces ", "and/with/slashes"},
		},
		{
			name:     "given reserved characters, then recovered",
			segments: []string{"a?b", "c#d", "e%f", "g;h"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := BuildURL("http", "example.com", "8080", tt.segments...)

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "example.com", u.Hostname())
			assert.Equal(t, "8080", u.Port())

			escaped := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
			require.Len(t, escaped, len(tt.segments))

			for i, seg := range escaped {
				got, err := url.PathUnescape(seg)
				require.NoError(t, err)
				assert.Equal(t, tt.segments[i], got)
			}
		})
	}
}

func TestMergeHeaders(t *testing.T) {
	tests := []struct {
		name      string
		defaults  http.Header
		overrides http.Header
		want      http.Header
	}{
		{
			name:      "given no overrides, then defaults copied",
			defaults:  http.Header{"Accept": {"application/json"}},
			overrides: http.Header{},
			want:      http.Header{"Accept": {"application/json"}},
		},
		{
			name:      "given nil defaults, then overrides used",
			defaults:  nil,
			overrides: http.Header{"X-Trace": {"1"}},
			want:      http.Header{"X-Trace": {"1"}},
		},
		{
			name:      "given same key in other case, then request value wins",
			defaults:  http.Header{"Content-Type": {"text/plain"}},
			overrides: http.Header{"content-type": {"application/json"}},
			want:      http.Header{"Content-Type": {"application/json"}},
		},
		{
			name:      "given multi-valued default, then override replaces all values",
			defaults:  http.Header{"Accept": {"a", "b"}, "X-Keep": {"yes"}},
			overrides: http.Header{"Accept": {"c"}},
			want:      http.Header{"Accept": {"c"}, "X-Keep": {"yes"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.defaults.Clone()

			got := mergeHeaders(tt.defaults, tt.overrides)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, before, tt.defaults, "defaults must not be modified")
		})
	}
}

func TestClient_newRequest(t *testing.T) {
	client := New(WithDefaultHeader("Accept", "application/json"))

	body := []byte(`{"a":1}`)
	req := client.newRequest(http.MethodPost, "https", "api.example.com", []RequestOption{
		Port("8443"),
		Path("v1"),
		Path("orders", "a b"),
		Header("accept", "text/plain"),
		Headers(http.Header{"X-Request-Id": {"r1"}}),
		Body(body),
		Timeout(time.Second),
	})

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://api.example.com:8443/v1/orders/a%20b", req.URL)
	assert.Equal(t, []string{"v1", "orders", "a b"}, req.Path)
	assert.Equal(t, "text/plain", req.Header.Get("Accept"))
	assert.Equal(t, "r1", req.Header.Get("X-Request-Id"))
	assert.Equal(t, time.Second, req.Timeout)

	body[0] = 'X'
	assert.Equal(t, `{"a":1}`, string(req.Body), "body must be copied")

	assert.Equal(t, "application/json", client.DefaultHeaders().Get("Accept"),
		"request headers must not leak into defaults")
}

func TestRequest_httpRequest(t *testing.T) {
	req := &Request{
		Method: http.MethodPut,
		URL:    "http://example.com/a",
		Header: http.Header{"Host": {"virtual.example.com"}, "X-A": {"1"}},
		Body:   []byte("payload"),
	}

	httpReq, err := req.httpRequest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "virtual.example.com", httpReq.Host)
	assert.Equal(t, "1", httpReq.Header.Get("X-A"))
	assert.Equal(t, int64(len("payload")), httpReq.ContentLength)

	got, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	httpReq.Header.Set("X-A", "changed")
	assert.Equal(t, "1", req.Header.Get("X-A"), "descriptor headers must not be shared")
}

func TestRequest_Curl(t *testing.T) {
	req := &Request{
		Method: http.MethodPost,
		URL:    "http://example.com/post",
		Header: http.Header{"X-B": {"2"}, "Content-Type": {"application/json"}},
		Body:   []byte(`{"name":"o'neil"}`),
	}

	assert.Equal(t,
		`curl -X POST 'http://example.com/post' -H 'Content-Type: application/json' -H 'X-B: 2' `+
			`--data-binary '{"name":"o'\''neil"}'`,
		req.Curl(),
	)
}
