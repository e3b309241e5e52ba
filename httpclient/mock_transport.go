package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// MockTransport is an http.RoundTripper for tests. It answers from stubs and
// records every request it receives.
//
//	mock := httpclient.NewMockTransport().
//	    StubPath("/orders/42", http.StatusOK, `{"id":42}`).
//	    StubStatus(593, "", "")
//	client := httpclient.New(httpclient.WithMockTransport(mock))
type MockTransport struct {
	mu          sync.RWMutex
	stubs       []stub
	fallback    *stub
	latency     time.Duration
	requests    []*http.Request
	requestHook func(*http.Request)
}

type stub struct {
	matcher  func(*http.Request) bool
	response *http.Response
	body     []byte
	err      error
}

// NewMockTransport creates an empty MockTransport. Without stubs every
// request fails with a transport error.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// StubResponse answers every unmatched request with statusCode and body.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	return m.StubStatus(statusCode, http.StatusText(statusCode), body)
}

// StubStatus answers every unmatched request with a status line carrying the
// given reason. An empty reason sends the bare code, as servers do for codes
// they have no text for.
func (m *MockTransport) StubStatus(statusCode int, reason, body string) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := newStub(nil, statusCode, reason, body)
	m.fallback = &s
	return m
}

// StubError fails every unmatched request with err.
func (m *MockTransport) StubError(err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &stub{err: err}
	return m
}

// StubPath answers requests whose escaped path equals path.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.EscapedPath() == path
	}, statusCode, body)
}

// StubFunc answers requests matching the predicate. Stubs are tried in the
// order they were added.
func (m *MockTransport) StubFunc(
	matcher func(*http.Request) bool,
	statusCode int,
	body string,
) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, newStub(matcher, statusCode, http.StatusText(statusCode), body))
	return m
}

// StubFuncError fails requests matching the predicate with err.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{matcher: matcher, err: err})
	return m
}

// StubLatency delays every answer by d. A request whose context ends first
// fails with the context's error.
func (m *MockTransport) StubLatency(d time.Duration) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
	return m
}

// OnRequest sets a hook called with each request before it is answered.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestHook = fn
	return m
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook, latency := m.requestHook, m.latency
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stubs {
		if s.matcher(req) {
			return s.answer(req)
		}
	}
	if m.fallback != nil {
		return m.fallback.answer(req)
	}

	return nil, errors.New("no stub found for request: " + req.Method + " " + req.URL.String())
}

// Requests returns all requests received so far.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests received.
func (m *MockTransport) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// Reset clears recorded requests, stubs, latency and the hook.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.stubs = nil
	m.fallback = nil
	m.latency = 0
	m.requestHook = nil
}

func newStub(matcher func(*http.Request) bool, statusCode int, reason, body string) stub {
	status := strconv.Itoa(statusCode)
	if reason != "" {
		status += " " + reason
	}
	return stub{
		matcher: matcher,
		response: &http.Response{
			Status:     status,
			StatusCode: statusCode,
			Proto:      "HTTP/1.1",
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     make(http.Header),
		},
		body: []byte(body),
	}
}

// answer returns a fresh copy of the stubbed response bound to req.
func (s stub) answer(req *http.Request) (*http.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.response
	resp.Header = s.response.Header.Clone()
	resp.Body = io.NopCloser(bytes.NewReader(s.body))
	resp.ContentLength = int64(len(s.body))
	resp.Request = req
	return &resp, nil
}

// WithMockTransport makes mock the base transport of the client.
// The OpenTelemetry instrumentation still wraps it.
func WithMockTransport(mock *MockTransport) Option {
	return func(cfg *internalConfig) {
		cfg.MockTransport = mock
	}
}
