// Package fiber adapts the httpserver middleware and error shape to Fiber.
//
// Fiber runs on fasthttp; the net/http middleware is bridged with
// gofiber's adaptor. Panics raised in Fiber handlers do not cross that
// bridge, so use Fiber's own recover middleware.
//
// # Quick Start
//
//	app := fiber.New(fiber.Config{
//	    ErrorHandler: fiberupstream.ErrorHandler(logger),
//	    JSONEncoder:  json.Marshal,
//	    JSONDecoder:  json.Unmarshal,
//	})
//	app.Use(fiberupstream.RequestID())
//	app.Use(fiberupstream.CorrelationID())
//
//	app.Get("/orders/:id", func(c *fiber.Ctx) error {
//	    ...
//	    if err != nil {
//	        return err // written as {"message": "API Timeout"} etc.
//	    }
//	    return c.Status(resp.StatusCode).Send(resp.Body())
//	})
package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// WrapMiddleware adapts httpserver middleware to Fiber middleware.
//
//	app.Use(fiberupstream.WrapMiddleware(myCustomMiddleware))
func WrapMiddleware(m httpserver.Middleware) fiber.Handler {
	return adaptor.HTTPMiddleware(func(next http.Handler) http.Handler {
		return m(next)
	})
}

// RequestID returns Fiber middleware that forwards or generates X-Request-ID.
func RequestID() fiber.Handler {
	return WrapMiddleware(httpserver.RequestID())
}

// CorrelationID returns Fiber middleware that forwards or generates
// Correlation-ID. Register it after RequestID.
func CorrelationID() fiber.Handler {
	return WrapMiddleware(httpserver.CorrelationID())
}

// Tracing returns Fiber middleware that starts a server span per request.
func Tracing(cfg httpserver.TracingConfig) fiber.Handler {
	return WrapMiddleware(httpserver.Tracing(cfg))
}

// ErrorHandler returns a fiber.ErrorHandler writing every error as
// {"message": reason}.
//
// *httpserver.HTTPError and *fiber.Error keep their status. Other errors are
// logged and answered with 500.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		herr := ToHTTPError(err)

		var handled *httpserver.HTTPError
		var ferr *fiber.Error
		if !errors.As(err, &handled) && !errors.As(err, &ferr) {
			logger.Error().
				Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("handler failed")
		}

		return c.Status(herr.Status).JSON(httpserver.Response[any]{Message: herr.Reason})
	}
}

// ToHTTPError converts err, including Fiber's own routing errors, to an
// *httpserver.HTTPError.
func ToHTTPError(err error) *httpserver.HTTPError {
	var herr *httpserver.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return &httpserver.HTTPError{Status: ferr.Code, Reason: ferr.Message}
	}
	return httpserver.AsHTTPError(err)
}

// RegisterHealth registers GET /livez and GET /readyz.
func RegisterHealth(app fiber.Router, h *httpserver.HealthHandler) {
	app.Get("/livez", adaptor.HTTPHandler(h.LiveHandler()))
	app.Get("/readyz", adaptor.HTTPHandler(h.ReadyHandler()))
}

// RegisterPrometheus registers the metrics endpoint for g, or for the
// default registry when g is nil. path defaults to /metrics.
func RegisterPrometheus(app fiber.Router, path string, g prometheus.Gatherer) {
	if path == "" {
		path = "/metrics"
	}
	handler := httpserver.PrometheusHandler()
	if g != nil {
		handler = httpserver.PrometheusHandlerFor(g, promhttp.HandlerOpts{})
	}
	app.Get(path, adaptor.HTTPHandler(handler))
}
