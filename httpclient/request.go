package httpclient

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one outgoing exchange.
//
// A Request is built by Client.Send from the method, scheme, host and
// RequestOptions, and is not modified after it is handed to the transport.
// It is attached to every *TransportError so failures can be reported
// against the exact request that produced them.
type Request struct {
	// Method is the HTTP method, e.g. http.MethodGet.
	Method string

	// Scheme is "http" or "https".
	Scheme string

	// Host is a DNS name or a literal IPv4/IPv6 address.
	Host string

	// Port is optional; empty means the scheme's default port.
	Port string

	// Path holds the unescaped path segments in order.
	Path []string

	// URL is the fully-qualified URL built from the fields above.
	URL string

	// Header is the merged header set: client defaults overlaid with
	// the request's own headers.
	Header http.Header

	// Body is sent verbatim. Nil means no body.
	Body []byte

	// Timeout bounds this exchange. Zero uses the client's Config.Timeout.
	Timeout time.Duration
}

// RequestOption customises a single request passed to Send.
type RequestOption func(*requestOptions)

type requestOptions struct {
	port    string
	path    []string
	header  http.Header
	body    []byte
	timeout time.Duration
}

// Path appends path segments to the request URL.
//
// Each segment is escaped on its own, so a segment containing "/" or spaces
// stays a single segment:
//
//	client.Send(ctx, http.MethodGet, "http", host,
//	    httpclient.Path("files", "reports/2024 Q1.pdf"),
//	)
//	// GET http://host/files/reports%2F2024%20Q1.pdf
func Path(segments ...string) RequestOption {
	return func(o *requestOptions) {
		o.path = append(o.path, segments...)
	}
}

// Port sets the destination port. Without it the scheme's default is used.
func Port(port string) RequestOption {
	return func(o *requestOptions) {
		o.port = port
	}
}

// Header sets a request header, overriding a default header with the same
// case-insensitive name.
func Header(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// Headers sets several request headers. Every key replaces the default
// header of the same name; multi-valued entries are kept as given.
func Headers(h http.Header) RequestOption {
	return func(o *requestOptions) {
		for k, v := range h {
			o.header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
}

// Body sets the request body. The bytes are copied when the request is built.
func Body(b []byte) RequestOption {
	return func(o *requestOptions) {
		o.body = b
	}
}

// Timeout bounds the exchange. When it expires the call fails with a 599
// TransportError.
func Timeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// BuildURL assembles scheme://host[:port]/seg1/seg2/...
//
// Segments are escaped with url.PathEscape, which encodes "/" as %2F, so
// parsing the result and unescaping each segment of the escaped path gives
// back the input segments in order. Without segments no trailing slash is
// added.
func BuildURL(scheme, host, port string, segments ...string) string {
	var b strings.Builder

	b.WriteString(scheme)
	b.WriteString("://")

	switch {
	case port != "":
		b.WriteString(net.JoinHostPort(strings.Trim(host, "[]"), port))
	case strings.Contains(host, ":") && net.ParseIP(host) != nil:
		// Bare IPv6 literal.
		b.WriteString("[" + host + "]")
	default:
		b.WriteString(host)
	}

	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}

	return b.String()
}

// mergeHeaders copies defaults and overlays overrides. A key present in
// overrides replaces the default's values entirely.
func mergeHeaders(defaults, overrides http.Header) http.Header {
	merged := defaults.Clone()
	if merged == nil {
		merged = make(http.Header, len(overrides))
	}
	for k, v := range overrides {
		merged[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	return merged
}

// NewRequest returns the request Send would issue, without sending it.
func (c *Client) NewRequest(method, scheme, host string, opts ...RequestOption) *Request {
	return c.newRequest(method, scheme, host, opts)
}

// newRequest builds the descriptor for Send, reading the default headers
// at this moment.
func (c *Client) newRequest(method, scheme, host string, opts []RequestOption) *Request {
	o := &requestOptions{header: make(http.Header)}
	for _, opt := range opts {
		opt(o)
	}

	req := &Request{
		Method:  method,
		Scheme:  scheme,
		Host:    host,
		Port:    o.port,
		Path:    o.path,
		Header:  mergeHeaders(c.defaultHeaders, o.header),
		Timeout: o.timeout,
	}
	if o.body != nil {
		req.Body = bytes.Clone(o.body)
	}
	req.URL = BuildURL(scheme, host, o.port, o.path...)

	return req
}

// httpRequest converts the descriptor into a *http.Request bound to ctx.
func (r *Request) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()

	// Host header overrides must reach the wire.
	if h := r.Header.Get("Host"); h != "" {
		req.Host = h
	}

	return req, nil
}
