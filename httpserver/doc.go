// Package httpserver hosts the handlers that call upstream services.
//
// It provides a graceful Server, the middleware an upstream-calling service
// needs (recovery, request and correlation ids, request logging, tracing) and
// the error shape every reply uses: a failure is written as
//
//	{"message": "<reason>"}
//
// with the status of the HTTPError that caused it.
//
// # Quick Start
//
//	mux := http.NewServeMux()
//	mux.Handle("/orders/{id}", httpserver.Handle(logger, getOrder))
//
//	server := httpserver.New(
//	    httpserver.WithConfig(httpserver.ProductionConfig()),
//	    httpserver.WithServiceName("orders-proxy"),
//	    httpserver.WithLogger(logger),
//	    httpserver.WithTracing(httpserver.TracingConfig{}),
//	    httpserver.WithLogging(httpserver.LoggerConfig{Logger: logger}),
//	    httpserver.WithMiddleware(httpserver.DefaultMiddleware()),
//	    httpserver.WithHandler(mux),
//	)
//
//	if err := server.ListenAndServe(ctx); err != nil {
//	    log.Fatal().Err(err).Send()
//	}
//
// # Upstream failures
//
// upstream.Caller returns an *HTTPError when a call fails, so a handler can
// return it unchanged:
//
//	func getOrder(w http.ResponseWriter, r *http.Request) error {
//	    resp, err := caller.ForRequest(r).MakeRequest(r.Context(), http.MethodGet, "https", host,
//	        httpclient.Path("orders", r.PathValue("id")))
//	    if err != nil {
//	        return err // 503 {"message": "API Timeout"} when nothing came back
//	    }
//	    _, err = w.Write(resp.Body())
//	    return err
//	}
//
// # Health Checks
//
//	health := httpserver.NewHealthHandler("orders-proxy", version)
//	health.AddReadinessCheck("upstream", pingUpstream)
//
//	mux.Handle("/livez", health.LiveHandler())
//	mux.Handle("/readyz", health.ReadyHandler())
//
// # Framework Adapters
//
// The same middleware and error shape are available for other routers:
//
//	import "github.com/kroma-labs/sentinel-upstream/httpserver/adapters/gin"
//	import "github.com/kroma-labs/sentinel-upstream/httpserver/adapters/echo"
//	import "github.com/kroma-labs/sentinel-upstream/httpserver/adapters/fiber"
package httpserver
