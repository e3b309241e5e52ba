package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusHandler serves the default registry in the Prometheus text
// format.
//
// Example:
//
//	mux.Handle("/metrics", httpserver.PrometheusHandler())
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// PrometheusHandlerFor serves the metrics gathered by g, e.g. a registry
// holding upstream.Metrics.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	caller := upstream.New(client, upstream.WithMetrics(upstream.NewMetrics(reg)))
//	mux.Handle("/metrics", httpserver.PrometheusHandlerFor(reg, promhttp.HandlerOpts{}))
func PrometheusHandlerFor(g prometheus.Gatherer, opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(g, opts)
}
