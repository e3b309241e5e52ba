package echo_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kroma-labs/sentinel-upstream/httpserver"
	echoupstream "github.com/kroma-labs/sentinel-upstream/httpserver/adapters/echo"
	echolib "github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("given httpserver middleware, when wrapped, then works with Echo", func(t *testing.T) {
		t.Parallel()

		e := echolib.New()
		e.Use(echoupstream.WrapMiddleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Custom", "test-value")
				next.ServeHTTP(w, r)
			})
		}))
		e.GET("/test", func(c echolib.Context) error {
			return c.String(http.StatusOK, "hello")
		})

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test-value", rec.Header().Get("X-Custom"))
		assert.Equal(t, "hello", rec.Body.String())
	})
}

func TestIDs(t *testing.T) {
	t.Parallel()

	t.Run("given only a request id, then it doubles as correlation id", func(t *testing.T) {
		t.Parallel()

		var fromCtx string
		e := echolib.New()
		e.Use(echoupstream.RequestID(), echoupstream.CorrelationID())
		e.GET("/test", func(c echolib.Context) error {
			fromCtx = httpserver.CorrelationIDFromContext(c.Request().Context())
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(httpserver.RequestIDHeader, "req-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "req-1", rec.Header().Get(httpserver.RequestIDHeader))
		assert.Equal(t, "req-1", rec.Header().Get(httpserver.CorrelationIDHeader))
		assert.Equal(t, "req-1", fromCtx)
	})
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("given panicking handler, then returns 500", func(t *testing.T) {
		t.Parallel()

		e := echolib.New()
		e.Use(echoupstream.Recovery(zerolog.Nop()))
		e.GET("/panic", func(_ echolib.Context) error {
			panic("test panic")
		})

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		handler    echolib.HandlerFunc
		wantStatus int
		wantBody   string
		wantLogged bool
	}{
		{
			name: "given HTTPError, then its status and reason are written",
			path: "/test",
			handler: func(_ echolib.Context) error {
				return fmt.Errorf("fetch: %w", httpserver.NewHTTPError(http.StatusServiceUnavailable, "API Timeout"))
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"message":"API Timeout"}`,
		},
		{
			name: "given echo HTTPError, then its code and message are written",
			path: "/test",
			handler: func(_ echolib.Context) error {
				return echolib.NewHTTPError(http.StatusBadRequest, "status must be numeric")
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"status must be numeric"}`,
		},
		{
			name:       "given unknown route, then 404 uses the same shape",
			path:       "/missing",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Not Found"}`,
		},
		{
			name: "given plain error, then 500 is written and logged",
			path: "/test",
			handler: func(_ echolib.Context) error {
				return errors.New("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"Internal Server Error"}`,
			wantLogged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := echolib.New()
			e.HTTPErrorHandler = echoupstream.HTTPErrorHandler(zerolog.New(&buf))
			if tt.handler != nil {
				e.GET("/test", tt.handler)
			}

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			assert.Equal(t, tt.wantLogged, bytes.Contains(buf.Bytes(), []byte("handler failed")))
		})
	}
}

func TestToEchoError(t *testing.T) {
	t.Parallel()

	t.Run("given HTTPError, then Echo's default handler writes its status and reason", func(t *testing.T) {
		t.Parallel()

		e := echolib.New()
		e.GET("/test", func(_ echolib.Context) error {
			return echoupstream.ToEchoError(httpserver.NewHTTPError(http.StatusServiceUnavailable, "API Timeout"))
		})

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"message":"API Timeout"}`, rec.Body.String())
	})

	t.Run("given plain error, then it is kept as the internal cause", func(t *testing.T) {
		t.Parallel()

		got := echoupstream.ToEchoError(assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, got.Code)
		assert.ErrorIs(t, got.Internal, assert.AnError)
	})
}

func TestRegisterHealth(t *testing.T) {
	t.Parallel()

	health := httpserver.NewHealthHandler("orders-proxy", "1.0.0")
	health.AddReadinessCheck("upstream", func(context.Context) error { return nil })

	e := echolib.New()
	echoupstream.RegisterHealth(e, health)

	for _, path := range []string{"/livez", "/readyz"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"status":"up"`, path)
	}
}

func TestRegisterPrometheus(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "echo_test_gauge", Help: "Test gauge."})
	reg.MustRegister(gauge)
	gauge.Set(2)

	e := echolib.New()
	echoupstream.RegisterPrometheus(e, "/metrics", reg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echo_test_gauge 2")
}
