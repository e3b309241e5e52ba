// Package echo adapts the httpserver middleware and error shape to Echo.
//
// # Quick Start
//
//	e := echo.New()
//	e.HTTPErrorHandler = echoupstream.HTTPErrorHandler(logger)
//	e.Use(echoupstream.Recovery(logger))
//	e.Use(echoupstream.RequestID())
//	e.Use(echoupstream.CorrelationID())
//
//	e.GET("/orders/:id", func(c echo.Context) error {
//	    resp, err := caller.ForRequest(c.Request()).MakeRequest(c.Request().Context(),
//	        http.MethodGet, "https", host, httpclient.Path("orders", c.Param("id")))
//	    if err != nil {
//	        return err // written as {"message": "API Timeout"} etc.
//	    }
//	    return c.Blob(resp.StatusCode, "application/json", resp.Body())
//	})
//
//	echoupstream.RegisterHealth(e, health)
package echo

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kroma-labs/sentinel-upstream/httpserver"
	echolib "github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// WrapMiddleware adapts httpserver middleware to Echo middleware.
//
//	e.Use(echoupstream.WrapMiddleware(myCustomMiddleware))
func WrapMiddleware(m httpserver.Middleware) echolib.MiddlewareFunc {
	return func(next echolib.HandlerFunc) echolib.HandlerFunc {
		return func(c echolib.Context) error {
			var err error
			handler := m(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				err = next(c)
			}))
			handler.ServeHTTP(c.Response(), c.Request())
			return err
		}
	}
}

// Recovery returns Echo middleware that answers a panic with 500.
func Recovery(logger zerolog.Logger) echolib.MiddlewareFunc {
	return WrapMiddleware(httpserver.Recovery(logger))
}

// RequestID returns Echo middleware that forwards or generates X-Request-ID.
func RequestID() echolib.MiddlewareFunc {
	return WrapMiddleware(httpserver.RequestID())
}

// CorrelationID returns Echo middleware that forwards or generates
// Correlation-ID. Register it after RequestID.
func CorrelationID() echolib.MiddlewareFunc {
	return WrapMiddleware(httpserver.CorrelationID())
}

// Logger returns Echo middleware for structured request logging.
func Logger(cfg httpserver.LoggerConfig) echolib.MiddlewareFunc {
	return WrapMiddleware(httpserver.Logger(cfg))
}

// Tracing returns Echo middleware that starts a server span per request.
func Tracing(cfg httpserver.TracingConfig) echolib.MiddlewareFunc {
	return WrapMiddleware(httpserver.Tracing(cfg))
}

// HTTPErrorHandler returns an echo.HTTPErrorHandler writing every error as
// {"message": reason}.
//
// *httpserver.HTTPError and *echo.HTTPError keep their status. Other errors
// are logged and answered with 500.
func HTTPErrorHandler(logger zerolog.Logger) echolib.HTTPErrorHandler {
	return func(err error, c echolib.Context) {
		if c.Response().Committed {
			return
		}

		herr := ToHTTPError(err)
		if !isHandled(err) {
			logger.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("handler failed")
		}

		resp := httpserver.Response[any]{Message: herr.Reason}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(herr.Status)
		} else {
			err = c.JSON(herr.Status, resp)
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

// ToHTTPError converts err, including Echo's own routing errors, to an
// *httpserver.HTTPError.
func ToHTTPError(err error) *httpserver.HTTPError {
	var herr *httpserver.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	var eerr *echolib.HTTPError
	if errors.As(err, &eerr) {
		reason := http.StatusText(eerr.Code)
		if eerr.Message != nil {
			reason = fmt.Sprint(eerr.Message)
		}
		return &httpserver.HTTPError{Status: eerr.Code, Reason: reason, Err: eerr.Internal}
	}
	return httpserver.AsHTTPError(err)
}

// ToEchoError converts err to an *echo.HTTPError, for services that keep
// Echo's default error handler.
func ToEchoError(err error) *echolib.HTTPError {
	herr := ToHTTPError(err)
	return echolib.NewHTTPError(herr.Status, herr.Reason).SetInternal(err)
}

func isHandled(err error) bool {
	var herr *httpserver.HTTPError
	var eerr *echolib.HTTPError
	return errors.As(err, &herr) || errors.As(err, &eerr)
}

// RegisterHealth registers GET /livez and GET /readyz.
func RegisterHealth(e *echolib.Echo, h *httpserver.HealthHandler) {
	e.GET("/livez", echolib.WrapHandler(h.LiveHandler()))
	e.GET("/readyz", echolib.WrapHandler(h.ReadyHandler()))
}

// RegisterPrometheus registers the metrics endpoint for g, or for the
// default registry when g is nil. path defaults to /metrics.
func RegisterPrometheus(e *echolib.Echo, path string, g prometheus.Gatherer) {
	if path == "" {
		path = "/metrics"
	}
	handler := httpserver.PrometheusHandler()
	if g != nil {
		handler = httpserver.PrometheusHandlerFor(g, promhttp.HandlerOpts{})
	}
	e.GET(path, echolib.WrapHandler(handler))
}
