package main

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/kroma-labs/sentinel-upstream/internal/config"
	"github.com/kroma-labs/sentinel-upstream/upstream"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds the request body forwarded to /post.
const maxBodyBytes = 1 << 20

// hopHeaders are not forwarded to the upstream.
var hopHeaders = []string{
	"Accept-Encoding",
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// proxy forwards requests to an httpbin-style upstream.
type proxy struct {
	caller   *upstream.Caller
	upstream config.Upstream
	logger   zerolog.Logger
}

func newProxy(caller *upstream.Caller, up config.Upstream, logger zerolog.Logger) *proxy {
	return &proxy{caller: caller, upstream: up, logger: logger}
}

// routes mounts
//
//	GET  /{status}  upstream GET /status/{status}
//	POST /post      upstream POST /post with the request body and headers
func (p *proxy) routes(r chi.Router) {
	r.Method(http.MethodGet, "/{status:[0-9]+}", httpserver.Handle(p.logger, p.status))
	r.Method(http.MethodPost, "/post", httpserver.Handle(p.logger, p.post))
}

func (p *proxy) status(w http.ResponseWriter, r *http.Request) error {
	resp, err := p.caller.ForRequest(r).MakeRequestWith(r.Context(), replyWithUpstreamCode,
		http.MethodGet, p.upstream.Scheme, p.upstream.Host,
		httpclient.Port(p.upstream.Port),
		httpclient.Path("status", chi.URLParam(r, "status")),
	)
	if err != nil {
		return err
	}
	return relay(w, resp)
}

func (p *proxy) post(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return httpserver.NewHTTPError(http.StatusRequestEntityTooLarge,
			http.StatusText(http.StatusRequestEntityTooLarge))
	}

	header := r.Header.Clone()
	for _, h := range hopHeaders {
		header.Del(h)
	}

	resp, err := p.caller.ForRequest(r).MakeRequest(r.Context(),
		http.MethodPost, p.upstream.Scheme, p.upstream.Host,
		httpclient.Port(p.upstream.Port),
		httpclient.Path("post"),
		httpclient.Headers(header),
		httpclient.Body(body),
	)
	if err != nil {
		return err
	}
	return relay(w, resp)
}

// relay answers 200 with the upstream body and content type.
func relay(w http.ResponseWriter, resp *httpclient.Response) error {
	body := resp.Body()
	if len(body) > 0 {
		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
	}
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(body)
	return err
}

// replyWithUpstreamCode answers with the upstream's own status code and
// its standard reason. A request that got no response answers 504.
func replyWithUpstreamCode(
	_ *upstream.Caller,
	_ *httpclient.Request,
	err *httpclient.TransportError,
) (*httpclient.Response, error) {
	if err.IsTimeout() {
		return nil, &httpserver.HTTPError{
			Status: http.StatusGatewayTimeout,
			Reason: http.StatusText(http.StatusGatewayTimeout),
			Err:    err,
		}
	}

	return nil, &httpserver.HTTPError{
		Status: err.Code,
		Reason: httpclient.StatusText(err.Code),
		Err:    err,
	}
}

// upstreamReady reports whether the upstream answers GET /status/200.
func (p *proxy) upstreamReady(timeout time.Duration) httpserver.HealthCheck {
	return func(ctx context.Context) error {
		_, err := p.caller.MakeRequest(ctx, http.MethodGet, p.upstream.Scheme, p.upstream.Host,
			httpclient.Port(p.upstream.Port),
			httpclient.Path("status", "200"),
			httpclient.Timeout(timeout),
		)
		return err
	}
}
