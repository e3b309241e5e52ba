package httpserver

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerScope = "github.com/kroma-labs/sentinel-upstream/httpserver"

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	// TracerProvider defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// Propagator defaults to otel.GetTextMapPropagator().
	Propagator propagation.TextMapPropagator

	// serviceName is set by the server.
	serviceName string

	// SkipPaths are not traced.
	SkipPaths []string

	// SpanNameFormatter names the span.
	// Default: "HTTP {method} {path}"
	SpanNameFormatter func(r *http.Request) string
}

// Tracing returns middleware that starts a server span per request.
//
// The incoming trace context is extracted, so an httpclient request made
// from the handler becomes a child of this span. 5xx replies mark the span
// as failed.
//
// Example:
//
//	handler := httpserver.Tracing(httpserver.TracingConfig{
//	    TracerProvider: tp,
//	    SkipPaths:      []string{"/livez", "/readyz"},
//	})(mux)
func Tracing(cfg TracingConfig) Middleware {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.Propagator == nil {
		cfg.Propagator = otel.GetTextMapPropagator()
	}
	if cfg.SpanNameFormatter == nil {
		cfg.SpanNameFormatter = func(r *http.Request) string {
			return "HTTP " + r.Method + " " + r.URL.Path
		}
	}

	tracer := cfg.TracerProvider.Tracer(tracerScope)

	skipPaths := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPaths[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			ctx := cfg.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
				semconv.ServerAddress(r.Host),
				semconv.UserAgentOriginal(r.UserAgent()),
				semconv.ClientAddress(r.RemoteAddr),
			}
			if cfg.serviceName != "" {
				attrs = append(attrs, semconv.ServiceName(cfg.serviceName))
			}

			ctx, span := tracer.Start(ctx, cfg.SpanNameFormatter(r),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			status := wrapped.Status()
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))

			if id := wrapped.Header().Get(RequestIDHeader); id != "" {
				span.SetAttributes(attribute.String("request.id", id))
			}
			if id := wrapped.Header().Get(CorrelationIDHeader); id != "" {
				span.SetAttributes(attribute.String("correlation.id", id))
			}

			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}
