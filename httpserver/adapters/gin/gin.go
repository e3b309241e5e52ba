// Package gin adapts the httpserver middleware and error shape to Gin.
//
// # Quick Start
//
//	r := gin.New()
//	r.Use(ginupstream.Recovery(logger))
//	r.Use(ginupstream.RequestID())
//	r.Use(ginupstream.CorrelationID())
//	r.Use(ginupstream.Errors(logger))
//
//	r.GET("/orders/:id", func(c *gin.Context) {
//	    resp, err := caller.ForRequest(c.Request).MakeRequest(c.Request.Context(),
//	        http.MethodGet, "https", host, httpclient.Path("orders", c.Param("id")))
//	    if err != nil {
//	        _ = c.Error(err) // written as {"message": "API Timeout"} etc.
//	        return
//	    }
//	    c.Data(resp.StatusCode, "application/json", resp.Body())
//	})
//
//	ginupstream.RegisterHealth(r, health)
package gin

import (
	"errors"
	"net/http"

	ginlib "github.com/gin-gonic/gin"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// WrapMiddleware adapts httpserver middleware to Gin middleware.
//
//	r.Use(ginupstream.WrapMiddleware(myCustomMiddleware))
func WrapMiddleware(m httpserver.Middleware) ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		var aborted bool
		handler := m(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
			aborted = c.IsAborted()
		}))
		handler.ServeHTTP(c.Writer, c.Request)
		if aborted {
			c.Abort()
		}
	}
}

// Recovery returns Gin middleware that answers a panic with 500.
func Recovery(logger zerolog.Logger) ginlib.HandlerFunc {
	return WrapMiddleware(httpserver.Recovery(logger))
}

// RequestID returns Gin middleware that forwards or generates X-Request-ID.
func RequestID() ginlib.HandlerFunc {
	return WrapMiddleware(httpserver.RequestID())
}

// CorrelationID returns Gin middleware that forwards or generates
// Correlation-ID. Register it after RequestID.
func CorrelationID() ginlib.HandlerFunc {
	return WrapMiddleware(httpserver.CorrelationID())
}

// Logger returns Gin middleware for structured request logging.
func Logger(cfg httpserver.LoggerConfig) ginlib.HandlerFunc {
	return WrapMiddleware(httpserver.Logger(cfg))
}

// Tracing returns Gin middleware that starts a server span per request.
func Tracing(cfg httpserver.TracingConfig) ginlib.HandlerFunc {
	return WrapMiddleware(httpserver.Tracing(cfg))
}

// Errors returns Gin middleware that writes the last error attached with
// c.Error when the handler wrote nothing itself.
//
// An *httpserver.HTTPError, such as one returned by upstream.Caller, is
// written with its status and reason. Other errors are logged and answered
// with 500.
func Errors(logger zerolog.Logger) ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var herr *httpserver.HTTPError
		if !errors.As(err, &herr) {
			logger.Error().
				Err(err).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("handler failed")
		}
		Error(c, err)
	}
}

// Error aborts c with err written as {"message": reason}.
func Error(c *ginlib.Context, err error) {
	herr := httpserver.AsHTTPError(err)
	c.AbortWithStatusJSON(herr.Status, httpserver.Response[any]{Message: herr.Reason})
}

// WrapHandler wraps an http.Handler as a Gin handler.
func WrapHandler(h http.Handler) ginlib.HandlerFunc {
	return func(c *ginlib.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RegisterHealth registers GET /livez and GET /readyz.
func RegisterHealth(r ginlib.IRoutes, h *httpserver.HealthHandler) {
	r.GET("/livez", WrapHandler(h.LiveHandler()))
	r.GET("/readyz", WrapHandler(h.ReadyHandler()))
}

// RegisterPrometheus registers the metrics endpoint for g, or for the
// default registry when g is nil. path defaults to /metrics.
func RegisterPrometheus(r ginlib.IRoutes, path string, g prometheus.Gatherer) {
	if path == "" {
		path = "/metrics"
	}
	handler := httpserver.PrometheusHandler()
	if g != nil {
		handler = httpserver.PrometheusHandlerFor(g, promhttp.HandlerOpts{})
	}
	r.GET(path, WrapHandler(handler))
}
