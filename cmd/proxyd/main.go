// Command proxyd is a small service that proxies requests to an
// httpbin-style upstream through upstream.Caller.
//
//	proxyd --config proxyd.yaml
//
//	curl localhost:8080/418          # upstream GET /status/418, answered with 418
//	curl -d '{"a":1}' localhost:8080/post
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/kroma-labs/sentinel-upstream/httpserver"
	"github.com/kroma-labs/sentinel-upstream/internal/config"
	"github.com/kroma-labs/sentinel-upstream/upstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "proxyd",
		Short:        "Proxy /{status} and /post to an httpbin-style upstream",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, cfg.Log.StdoutLogger())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	server, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})

	return g.Wait()
}

// newServer wires the upstream caller, the routes and the HTTP server.
func newServer(cfg *config.Config, logger zerolog.Logger) (*httpserver.Server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	clientOpts, err := cfg.Upstream.ClientOptions(logger)
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}

	callerOpts := []upstream.Option{upstream.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		callerOpts = append(callerOpts, upstream.WithMetrics(upstream.NewMetrics(reg)))
	}
	caller := upstream.New(httpclient.New(clientOpts...), callerOpts...)

	p := newProxy(caller, cfg.Upstream, logger)

	health := httpserver.NewHealthHandler("proxyd", version)
	health.AddReadinessCheck(cfg.Upstream.Name, p.upstreamReady(health.CheckTimeout))

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/livez", health.LiveHandler())
	r.Method(http.MethodGet, "/readyz", health.ReadyHandler())
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, httpserver.PrometheusHandlerFor(reg, promhttp.HandlerOpts{}))
	}
	p.routes(r)

	serverCfg := serverPreset(cfg.Server.Profile)
	serverCfg.Addr = cfg.Server.Addr
	serverCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout

	probes := []string{"/livez", "/readyz", cfg.Metrics.Path}

	return httpserver.New(
		httpserver.WithConfig(serverCfg),
		httpserver.WithServiceName("proxyd"),
		httpserver.WithLogger(logger),
		httpserver.WithTracing(httpserver.TracingConfig{SkipPaths: probes}),
		httpserver.WithLogging(httpserver.LoggerConfig{Logger: logger, SkipPaths: probes}),
		httpserver.WithMiddleware(
			httpserver.Recovery(logger),
			httpserver.RequestID(),
			httpserver.CorrelationID(),
		),
		httpserver.WithHandler(r),
	), nil
}

func serverPreset(profile string) httpserver.Config {
	switch profile {
	case config.ProfileProduction:
		return httpserver.ProductionConfig()
	case config.ProfileDevelopment:
		return httpserver.DevelopmentConfig()
	default:
		return httpserver.DefaultConfig()
	}
}
