package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptrace"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ http.RoundTripper = (*otelTransport)(nil)

// otelTransport wraps an http.RoundTripper with OpenTelemetry spans, metrics
// and trace context propagation.
type otelTransport struct {
	base http.RoundTripper
	cfg  *internalConfig
}

func newOtelTransport(base http.RoundTripper, cfg *internalConfig) *otelTransport {
	return &otelTransport{base: base, cfg: cfg}
}

// RoundTrip implements http.RoundTripper.
func (t *otelTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, span := t.cfg.Tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.requestAttributes(req)...),
	)
	defer span.End()

	// The request may be shared with the caller; never write its headers.
	req = req.Clone(ctx)
	t.cfg.Propagators.Inject(ctx, propagation.HeaderCarrier(req.Header))

	baseAttrs := t.cfg.baseAttributes()
	t.cfg.Metrics.recordActiveRequestStart(ctx, baseAttrs)
	defer t.cfg.Metrics.recordActiveRequestEnd(ctx, baseAttrs)

	if req.ContentLength > 0 {
		t.cfg.Metrics.recordRequestBodySize(ctx, req.ContentLength, baseAttrs)
	}

	var nt *networkTrace
	if t.cfg.EnableNetworkTrace {
		nt = &networkTrace{}
		req = req.WithContext(httptrace.WithClientTrace(ctx, createClientTrace(nt)))
	}

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	if nt != nil {
		nt.addTraceEvents(span)
		nt.recordTimingMetrics(ctx, t.cfg.Metrics, baseAttrs)
	}

	if err != nil {
		errorType := classifyError(err)
		setSpanError(span, err, errorType)
		t.cfg.Metrics.recordError(ctx, errorType, baseAttrs)
		t.cfg.Metrics.recordRequestDuration(ctx, duration, t.errorAttributes(req, errorType))
		return nil, err
	}

	span.SetAttributes(t.responseAttributes(resp)...)

	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		span.SetAttributes(attribute.String("error.type", errorTypeFromStatusCode(resp.StatusCode)))
	}

	if resp.ContentLength > 0 {
		t.cfg.Metrics.recordResponseBodySize(ctx, resp.ContentLength, baseAttrs)
	}

	t.cfg.Metrics.recordRequestDuration(ctx, duration, t.metricsAttributes(req, resp))

	return resp, nil
}

// requestAttributes returns span attributes for the request.
func (t *otelTransport) requestAttributes(req *http.Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 8)
	attrs = append(attrs, t.cfg.baseAttributes()...)
	attrs = append(attrs, attribute.String("http.request.method", req.Method))

	if req.URL != nil {
		attrs = append(attrs,
			attribute.String("url.full", req.URL.String()),
			attribute.String("url.scheme", req.URL.Scheme),
		)
		attrs = append(attrs, serverAttributes(req, true)...)
	}

	if req.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.request.body.size", req.ContentLength))
	}

	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}

	return attrs
}

// responseAttributes returns span attributes for the response.
func (t *otelTransport) responseAttributes(resp *http.Response) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.response.body.size", resp.ContentLength))
	}

	if resp.ProtoMajor > 0 {
		version := strconv.Itoa(resp.ProtoMajor)
		if resp.ProtoMajor == 1 {
			version += "." + strconv.Itoa(resp.ProtoMinor)
		}
		attrs = append(attrs, attribute.String("network.protocol.version", version))
	}

	return attrs
}

// metricsAttributes returns attributes for the duration histogram.
func (t *otelTransport) metricsAttributes(
	req *http.Request,
	resp *http.Response,
) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 6)
	attrs = append(attrs, t.cfg.baseAttributes()...)
	attrs = append(attrs, attribute.String("http.request.method", req.Method))
	attrs = append(attrs, serverAttributes(req, true)...)
	attrs = append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))

	if et := errorTypeFromStatusCode(resp.StatusCode); et != "" {
		attrs = append(attrs, attribute.String("error.type", et))
	}

	return attrs
}

// errorAttributes returns attributes for failed round trips.
func (t *otelTransport) errorAttributes(req *http.Request, errorType string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 5)
	attrs = append(attrs, t.cfg.baseAttributes()...)
	attrs = append(attrs, attribute.String("http.request.method", req.Method))
	attrs = append(attrs, serverAttributes(req, false)...)

	if errorType != "" {
		attrs = append(attrs, attribute.String("error.type", errorType))
	}

	return attrs
}

// serverAttributes returns server.address and server.port. With
// defaultPort the scheme's port is reported when the URL has none.
func serverAttributes(req *http.Request, defaultPort bool) []attribute.KeyValue {
	if req.URL == nil {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, 2)
	if host := req.URL.Hostname(); host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}

	if port := req.URL.Port(); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			attrs = append(attrs, attribute.Int("server.port", p))
		}
		return attrs
	}

	if defaultPort {
		switch req.URL.Scheme {
		case "http":
			attrs = append(attrs, attribute.Int("server.port", 80))
		case "https":
			attrs = append(attrs, attribute.Int("server.port", 443))
		}
	}

	return attrs
}
