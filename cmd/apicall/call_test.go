package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func hostPort(t *testing.T, rawURL string) (string, string) {
	t.Helper()

	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Hostname(), u.Port()
}

func TestApicall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/status/418":
			w.WriteHeader(http.StatusTeapot)
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(r.Method + " " + r.URL.EscapedPath() + " " + r.Header.Get("X-Token") + " " + string(body)))
		}
	}))
	t.Cleanup(srv.Close)

	host, port := hostPort(t, srv.URL)
	base := []string{"--host", host, "--port", port}

	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantStatus int
		wantReason string
		wantBody   string
	}{
		{
			name:       "given a successful request, then status and body are printed",
			args:       []string{"post", "files", "a b/c", "-H", "X-Token: t1", "-d", "hello"},
			wantStatus: http.StatusOK,
			wantReason: "OK",
			wantBody:   "POST /files/a%20b%2Fc t1 hello",
		},
		{
			name:       "given a 4xx reply, then the translated failure is printed",
			args:       []string{"GET", "status", "418"},
			wantErr:    true,
			wantStatus: http.StatusTeapot,
			wantReason: "I'm a teapot",
		},
		{
			name:       "given no reply in time, then API Timeout is printed",
			args:       []string{"GET", "slow", "--timeout", "100ms"},
			wantErr:    true,
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "API Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := execute(t, append(tt.args, base...)...)
			if tt.wantErr {
				assert.ErrorIs(t, err, errRequestFailed)
			} else {
				require.NoError(t, err)
			}

			var got result
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Equal(t, tt.wantBody, got.Body)
		})
	}
}

func TestApicall_Curl(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "POST", "post", "-H", "Content-Type: application/json", "-d", `{"a":1}`,
		"--host", "example.com", "--curl")

	require.NoError(t, err)
	assert.Equal(t,
		`curl -X POST 'http://example.com/post' -H 'Content-Type: application/json' --data-binary '{"a":1}'`+"\n",
		out,
	)
}

func TestApicall_InvalidHeader(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "GET", "-H", "no-colon", "--host", "example.com", "--curl")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid header")
}
