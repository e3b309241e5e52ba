package httpclient

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// networkTrace collects connection timings for one round trip.
//
// httptrace hooks may fire from the transport's dial goroutines, so every
// field is guarded by mu.
type networkTrace struct {
	mu sync.Mutex

	dnsStart, dnsDone         time.Time
	connectStart, connectDone time.Time
	tlsStart, tlsDone         time.Time
	gotConn                   time.Time
	wroteRequest              time.Time
	firstByte                 time.Time

	connReused bool
	connIdle   bool
	peer       string
	alpn       string
	dnsAddrs   []string
}

func createClientTrace(nt *networkTrace) *httptrace.ClientTrace {
	stamp := func(t *time.Time) {
		nt.mu.Lock()
		*t = time.Now()
		nt.mu.Unlock()
	}

	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) { stamp(&nt.dnsStart) },
		DNSDone: func(info httptrace.DNSDoneInfo) {
			nt.mu.Lock()
			defer nt.mu.Unlock()
			nt.dnsDone = time.Now()
			for _, addr := range info.Addrs {
				nt.dnsAddrs = append(nt.dnsAddrs, addr.String())
			}
		},
		ConnectStart:      func(_, _ string) { stamp(&nt.connectStart) },
		ConnectDone:       func(_, _ string, _ error) { stamp(&nt.connectDone) },
		TLSHandshakeStart: func() { stamp(&nt.tlsStart) },
		TLSHandshakeDone: func(state tls.ConnectionState, _ error) {
			nt.mu.Lock()
			defer nt.mu.Unlock()
			nt.tlsDone = time.Now()
			nt.alpn = state.NegotiatedProtocol
		},
		GotConn: func(info httptrace.GotConnInfo) {
			nt.mu.Lock()
			defer nt.mu.Unlock()
			nt.gotConn = time.Now()
			nt.connReused = info.Reused
			nt.connIdle = info.WasIdle
			if info.Conn != nil && info.Conn.RemoteAddr() != nil {
				nt.peer = info.Conn.RemoteAddr().String()
			}
		},
		WroteRequest:         func(httptrace.WroteRequestInfo) { stamp(&nt.wroteRequest) },
		GotFirstResponseByte: func() { stamp(&nt.firstByte) },
	}
}

func phase(start, end time.Time) (time.Duration, bool) {
	if start.IsZero() || end.IsZero() {
		return 0, false
	}
	return end.Sub(start), true
}

// addTraceEvents adds one event per completed phase to s.
func (nt *networkTrace) addTraceEvents(s trace.Span) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	if d, ok := phase(nt.dnsStart, nt.dnsDone); ok {
		s.AddEvent("dns.done", trace.WithTimestamp(nt.dnsDone), trace.WithAttributes(
			attribute.Float64("dns.duration_ms", float64(d.Microseconds())/1000),
			attribute.StringSlice("dns.addresses", nt.dnsAddrs),
		))
	}
	if d, ok := phase(nt.connectStart, nt.connectDone); ok {
		s.AddEvent("connect.done", trace.WithTimestamp(nt.connectDone), trace.WithAttributes(
			attribute.Float64("connect.duration_ms", float64(d.Microseconds())/1000),
		))
	}
	if d, ok := phase(nt.tlsStart, nt.tlsDone); ok {
		s.AddEvent("tls.done", trace.WithTimestamp(nt.tlsDone), trace.WithAttributes(
			attribute.Float64("tls.duration_ms", float64(d.Microseconds())/1000),
			attribute.String("tls.protocol", nt.alpn),
		))
	}
	if !nt.gotConn.IsZero() {
		s.AddEvent("got_conn", trace.WithTimestamp(nt.gotConn), trace.WithAttributes(
			attribute.Bool("connection.reused", nt.connReused),
			attribute.Bool("connection.was_idle", nt.connIdle),
			attribute.String("network.peer.address", nt.peer),
		))
	}
	if d, ok := phase(nt.wroteRequest, nt.firstByte); ok {
		s.AddEvent("got_first_response_byte", trace.WithTimestamp(nt.firstByte), trace.WithAttributes(
			attribute.Float64("ttfb_ms", float64(d.Microseconds())/1000),
		))
	}
}

// recordTimingMetrics records the phase durations on m.
func (nt *networkTrace) recordTimingMetrics(
	ctx context.Context,
	m *metrics,
	attrs []attribute.KeyValue,
) {
	if m == nil {
		return
	}

	nt.mu.Lock()
	defer nt.mu.Unlock()

	if d, ok := phase(nt.dnsStart, nt.dnsDone); ok {
		m.recordDNSDuration(ctx, d, attrs)
	}
	if d, ok := phase(nt.connectStart, nt.connectDone); ok {
		m.recordConnectionDuration(ctx, d, attrs)
	}
	if d, ok := phase(nt.tlsStart, nt.tlsDone); ok {
		m.recordTLSDuration(ctx, d, attrs)
	}
	if d, ok := phase(nt.wroteRequest, nt.firstByte); ok {
		m.recordTTFB(ctx, d, attrs)
	}
}
