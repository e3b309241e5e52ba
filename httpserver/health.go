package httpserver

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

// HealthCheck reports whether a dependency is usable. Return nil when it is.
type HealthCheck func(ctx context.Context) error

// CheckResult is the outcome of one HealthCheck.
type CheckResult struct {
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the body of the liveness and readiness endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version,omitempty"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

const (
	healthStatusUp   = "up"
	healthStatusDown = "down"
)

// HealthHandler serves /livez and /readyz.
//
//	health := httpserver.NewHealthHandler("orders-proxy", "1.2.0")
//	health.AddReadinessCheck("upstream", func(ctx context.Context) error {
//	    _, err := caller.MakeRequest(ctx, http.MethodGet, "http", host, httpclient.Path("status", "200"))
//	    return err
//	})
//	mux.Handle("/livez", health.LiveHandler())
//	mux.Handle("/readyz", health.ReadyHandler())
type HealthHandler struct {
	service   string
	version   string
	startTime time.Time

	// CheckTimeout bounds every readiness check. Default: 2s
	CheckTimeout time.Duration

	mu     sync.RWMutex
	checks map[string]HealthCheck
}

// NewHealthHandler creates a HealthHandler without checks.
func NewHealthHandler(service, version string) *HealthHandler {
	return &HealthHandler{
		service:      service,
		version:      version,
		startTime:    time.Now(),
		CheckTimeout: 2 * time.Second,
		checks:       make(map[string]HealthCheck),
	}
}

// AddReadinessCheck registers check under name, replacing one with the same
// name.
func (h *HealthHandler) AddReadinessCheck(name string, check HealthCheck) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// LiveHandler always answers 200 while the process serves requests.
func (h *HealthHandler) LiveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.write(w, http.StatusOK, h.response(healthStatusUp, nil))
	})
}

// ReadyHandler runs every readiness check concurrently and answers 200 when
// all pass, 503 otherwise.
func (h *HealthHandler) ReadyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := h.runChecks(r.Context())

		status, code := healthStatusUp, http.StatusOK
		for _, res := range results {
			if res.Status != healthStatusUp {
				status, code = healthStatusDown, http.StatusServiceUnavailable
				break
			}
		}

		h.write(w, code, h.response(status, results))
	})
}

func (h *HealthHandler) runChecks(ctx context.Context) map[string]CheckResult {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(h.checks))
	for name, check := range h.checks {
		checks[name] = check
	}
	h.mu.RUnlock()
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]CheckResult, len(names))
		g       errgroup.Group
	)

	for _, name := range names {
		check := checks[name]
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, h.CheckTimeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			res := CheckResult{Status: healthStatusUp, Latency: time.Since(start).String()}
			if err != nil {
				res.Status = healthStatusDown
				res.Message = err.Error()
			}

			mu.Lock()
			results[name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (h *HealthHandler) response(status string, checks map[string]CheckResult) HealthResponse {
	return HealthResponse{
		Status:    status,
		Service:   h.service,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

func (h *HealthHandler) write(w http.ResponseWriter, code int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
