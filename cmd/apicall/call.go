package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/kroma-labs/sentinel-upstream/internal/config"
	"github.com/kroma-labs/sentinel-upstream/upstream"
	"github.com/rs/zerolog"
)

// errRequestFailed is returned after a failure has been printed.
var errRequestFailed = errors.New("request failed")

type callOptions struct {
	configPath string
	method     string
	segments   []string

	scheme  string
	host    string
	port    string
	headers []string
	data    string
	timeout time.Duration

	curl    bool
	verbose bool
}

// result is printed for every request that was sent.
type result struct {
	Status  int               `json:"status"`
	Reason  string            `json:"reason"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

func (o *callOptions) run(ctx context.Context, stdout, stderr io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.override(&cfg.Upstream)

	logger := zerolog.Nop()
	if o.verbose {
		logger = config.Log{Level: "debug", Format: "console"}.Logger(stderr)
	}

	clientOpts, err := cfg.Upstream.ClientOptions(logger)
	if err != nil {
		return err
	}
	caller := upstream.New(httpclient.New(clientOpts...), upstream.WithLogger(logger))

	reqOpts, err := o.requestOptions(cfg.Upstream)
	if err != nil {
		return err
	}
	method := strings.ToUpper(o.method)

	if o.curl {
		req := caller.Client().NewRequest(method, cfg.Upstream.Scheme, cfg.Upstream.Host, reqOpts...)
		_, err := fmt.Fprintln(stdout, req.Curl())
		return err
	}

	url := httpclient.BuildURL(cfg.Upstream.Scheme, cfg.Upstream.Host, cfg.Upstream.Port, o.segments...)

	resp, err := caller.MakeRequest(ctx, method, cfg.Upstream.Scheme, cfg.Upstream.Host, reqOpts...)
	if err != nil {
		herr := httpserver.AsHTTPError(err)
		if werr := writeJSON(stdout, result{Status: herr.Status, Reason: herr.Reason, URL: url}); werr != nil {
			return werr
		}
		return errRequestFailed
	}

	return writeJSON(stdout, result{
		Status:  resp.StatusCode,
		Reason:  resp.Reason(),
		URL:     url,
		Headers: flatten(resp.Header),
		Body:    resp.String(),
	})
}

func (o *callOptions) override(up *config.Upstream) {
	if o.scheme != "" {
		up.Scheme = o.scheme
	}
	if o.host != "" {
		up.Host = o.host
	}
	if o.port != "" {
		up.Port = o.port
	}
	if o.timeout > 0 {
		up.Timeout = o.timeout
	}
}

func (o *callOptions) requestOptions(up config.Upstream) ([]httpclient.RequestOption, error) {
	opts := []httpclient.RequestOption{
		httpclient.Port(up.Port),
		httpclient.Path(o.segments...),
	}

	for _, h := range o.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, want \"Name: value\"", h)
		}
		opts = append(opts, httpclient.Header(strings.TrimSpace(name), strings.TrimSpace(value)))
	}

	if o.data != "" {
		opts = append(opts, httpclient.Body([]byte(o.data)))
	}

	return opts, nil
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
