package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func serverHostPort(t *testing.T, server *httptest.Server) (string, string) {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return u.Hostname(), u.Port()
}

func TestClient_Do(t *testing.T) {
	type args struct {
		status int
		body   string
	}

	tests := []struct {
		name       string
		args       args
		wantErr    bool
		wantCode   int
		wantReason string
	}{
		{
			name:     "given 200, then response returned",
			args:     args{status: http.StatusOK, body: `{"ok":true}`},
			wantCode: http.StatusOK,
		},
		{
			name:     "given 204, then response returned",
			args:     args{status: http.StatusNoContent},
			wantCode: http.StatusNoContent,
		},
		{
			name:       "given 400, then transport error with reason",
			args:       args{status: http.StatusBadRequest, body: "nope"},
			wantErr:    true,
			wantCode:   http.StatusBadRequest,
			wantReason: "Bad Request",
		},
		{
			name:       "given 500, then transport error with reason",
			args:       args{status: http.StatusInternalServerError},
			wantErr:    true,
			wantCode:   http.StatusInternalServerError,
			wantReason: "Internal Server Error",
		},
		{
			name:       "given 593 without reason, then reason is Unknown",
			args:       args{status: 593},
			wantErr:    true,
			wantCode:   593,
			wantReason: ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tt.args.status)
					_, _ = io.WriteString(w, tt.args.body)
				}),
			)
			defer server.Close()

			host, port := serverHostPort(t, server)
			client := New()

			resp, err := client.Do(context.Background(), http.MethodGet, "http", host,
				Port(port), Path(strconv.Itoa(tt.args.status)),
			)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantCode, resp.StatusCode)
				assert.Equal(t, tt.args.body, resp.String())
				return
			}

			require.Error(t, err)
			terr, ok := AsTransportError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, terr.Code)
			assert.Equal(t, tt.wantReason, terr.Reason)
			assert.False(t, terr.IsTimeout())
			require.NotNil(t, terr.Response)
			assert.Equal(t, tt.args.body, terr.Response.String())
			require.NotNil(t, terr.Request)
			assert.Equal(t, http.MethodGet, terr.Request.Method)
			assert.Equal(t, server.URL+"/"+strconv.Itoa(tt.args.status), terr.Request.URL)
		})
	}
}

func TestClient_Do_NoResponse(t *testing.T) {
	t.Run("given server slower than timeout, then 599 API Timeout", func(t *testing.T) {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				w.WriteHeader(http.StatusOK)
			}),
		)
		defer server.Close()

		host, port := serverHostPort(t, server)
		client := New()

		start := time.Now()
		_, err := client.Do(context.Background(), http.MethodGet, "http", host,
			Port(port), Timeout(50*time.Millisecond),
		)

		assert.Less(t, time.Since(start), time.Second)
		terr, ok := AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, StatusTimeout, terr.Code)
		assert.Equal(t, ReasonTimeout, terr.Reason)
		assert.Equal(t, ErrorTypeTimeout, terr.ErrorType())
		assert.True(t, terr.IsTimeout())
		assert.Nil(t, terr.Response)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("given closed port, then 599 connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		host, port := serverHostPort(t, server)
		server.Close()

		client := New()
		_, err := client.Do(context.Background(), http.MethodGet, "http", host, Port(port))

		terr, ok := AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, StatusTimeout, terr.Code)
		assert.Equal(t, ReasonTimeout, terr.Reason)
		assert.Equal(t, ErrorTypeConnectionRefused, terr.ErrorType())
	})

	t.Run("given stubbed transport error, then 599 wrapping it", func(t *testing.T) {
		cause := errors.New("boom")
		client := New(WithMockTransport(NewMockTransport().StubError(cause)))

		_, err := client.Do(context.Background(), http.MethodGet, "http", "example.com")

		terr, ok := AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, StatusTimeout, terr.Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("given invalid method, then 599 invalid request", func(t *testing.T) {
		mock := NewMockTransport().StubResponse(http.StatusOK, "")
		client := New(WithMockTransport(mock))

		_, err := client.Do(context.Background(), "BAD METHOD", "http", "example.com")

		terr, ok := AsTransportError(err)
		require.True(t, ok)
		assert.Equal(t, StatusTimeout, terr.Code)
		assert.Equal(t, ErrorTypeInvalidRequest, terr.ErrorType())
		assert.Zero(t, mock.RequestCount())
	})
}

func TestClient_Do_StatusReason(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		reason     string
		wantReason string
	}{
		{
			name:       "given custom reason, then reason kept",
			code:       http.StatusTeapot,
			reason:     "Short and stout",
			wantReason: "Short and stout",
		},
		{
			name:       "given known code without reason, then standard text",
			code:       http.StatusNotFound,
			reason:     "",
			wantReason: "Not Found",
		},
		{
			name:       "given unknown code without reason, then Unknown",
			code:       593,
			reason:     "",
			wantReason: ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(WithMockTransport(NewMockTransport().StubStatus(tt.code, tt.reason, "")))

			_, err := client.Do(context.Background(), http.MethodGet, "http", "example.com")

			terr, ok := AsTransportError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, terr.Code)
			assert.Equal(t, tt.wantReason, terr.Reason)
			assert.Equal(t, strconv.Itoa(tt.code), terr.ErrorType())
		})
	}
}

func TestClient_Send(t *testing.T) {
	t.Run("given debug logger, then request logged before dispatch", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

		release := make(chan struct{})
		mock := NewMockTransport().
			OnRequest(func(*http.Request) { <-release }).
			StubResponse(http.StatusOK, "")
		client := New(WithLogger(logger), WithMockTransport(mock))

		call := client.Send(context.Background(), http.MethodGet, "http", "example.com",
			Path("a b"),
		)

		assert.Contains(t, buf.String(), `"level":"debug"`)
		assert.Contains(t, buf.String(), `"message":"sending GET http://example.com/a%20b"`)
		assert.Contains(t, buf.String(), `"method":"GET"`)
		assert.Equal(t, CallPending, call.State())

		close(release)
		_, err := call.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, CallSucceeded, call.State())
	})

	t.Run("given info logger, then nothing logged", func(t *testing.T) {
		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
		client := New(WithLogger(logger), WithMockTransport(NewMockTransport().StubResponse(http.StatusOK, "")))

		_, err := client.Do(context.Background(), http.MethodGet, "http", "example.com")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("given waiter gives up, then exchange still completes", func(t *testing.T) {
		mock := NewMockTransport().
			StubLatency(100 * time.Millisecond).
			StubResponse(http.StatusOK, "late")
		client := New(WithMockTransport(mock))

		ctx, cancel := context.WithCancel(context.Background())
		call := client.Send(ctx, http.MethodGet, "http", "example.com")
		cancel()

		_, err := call.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		select {
		case <-call.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("call never resolved")
		}
		assert.Equal(t, CallSucceeded, call.State())

		resp, err := call.Wait(ctx)
		require.NoError(t, err, "a resolved call returns its result even with an ended context")
		assert.Equal(t, "late", resp.String())
	})

	t.Run("given failed call, then state failed", func(t *testing.T) {
		client := New(WithMockTransport(NewMockTransport().StubResponse(http.StatusBadGateway, "")))

		call := client.Send(context.Background(), http.MethodGet, "http", "example.com")
		<-call.Done()

		assert.Equal(t, CallFailed, call.State())
		assert.Equal(t, "failed", call.State().String())
	})

	t.Run("given default header changed after send, then request keeps old value", func(t *testing.T) {
		release := make(chan struct{})
		mock := NewMockTransport().
			OnRequest(func(*http.Request) { <-release }).
			StubResponse(http.StatusOK, "")
		client := New(WithDefaultHeader("X-Tenant", "a"), WithMockTransport(mock))

		call := client.Send(context.Background(), http.MethodGet, "http", "example.com")
		client.SetDefaultHeader("X-Tenant", "b")
		close(release)

		_, err := call.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a", call.Request().Header.Get("X-Tenant"))
		assert.Equal(t, "a", mock.LastRequest().Header.Get("X-Tenant"))
	})
}

func TestClient_Send_Concurrent(t *testing.T) {
	var inFlight, peak atomic.Int32
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			_, _ = io.WriteString(w, r.URL.Path)
		}),
	)
	defer server.Close()

	host, port := serverHostPort(t, server)
	client := New()

	const n = 20
	calls := make([]*Call, n)
	for i := range calls {
		calls[i] = client.Send(context.Background(), http.MethodGet, "http", host,
			Port(port), Path(strconv.Itoa(i)),
		)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i, call := range calls {
		g.Go(func() error {
			resp, err := call.Wait(ctx)
			if err != nil {
				return err
			}
			if resp.String() != "/"+strconv.Itoa(i) {
				return errors.New("response mismatch for call " + strconv.Itoa(i))
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Greater(t, peak.Load(), int32(1), "exchanges should overlap")
}

func TestClient_Fork(t *testing.T) {
	mock := NewMockTransport().StubResponse(http.StatusOK, "")
	parent := New(WithDefaultHeader("Accept", "application/json"), WithMockTransport(mock))

	child := parent.Fork()
	child.SetDefaultHeader("Correlation-ID", "abc")
	child.DelDefaultHeader("Accept")

	assert.Equal(t, "application/json", parent.DefaultHeaders().Get("Accept"))
	assert.Empty(t, parent.DefaultHeaders().Get("Correlation-ID"))
	assert.Same(t, parent.HTTP(), child.HTTP())

	_, err := child.Do(context.Background(), http.MethodGet, "http", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "abc", mock.LastRequest().Header.Get("Correlation-ID"))
	assert.Empty(t, mock.LastRequest().Header.Get("Accept"))
}
