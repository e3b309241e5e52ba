package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
)

// Server wraps http.Server with graceful shutdown, signal handling,
// and lifecycle logging.
//
// Create a Server using New():
//
//	server := httpserver.New(
//	    httpserver.WithConfig(httpserver.ProductionConfig()),
//	    httpserver.WithServiceName("orders-proxy"),
//	    httpserver.WithHandler(mux),
//	)
//
//	// Blocks until SIGTERM, SIGINT or ctx ends.
//	if err := server.ListenAndServe(ctx); err != nil {
//	    log.Fatal().Err(err).Send()
//	}
type Server struct {
	httpServer *http.Server
	config     Config
	logger     zerolog.Logger
}

// New creates a Server. DefaultConfig() is used unless WithConfig is given.
//
// The handler is wrapped, outermost first, by tracing (WithTracing), request
// logging (WithLogging) and the WithMiddleware list.
func New(opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "http-server"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}

	var middlewares []Middleware

	if cfg.TracingConfig != nil {
		tracingCfg := *cfg.TracingConfig
		tracingCfg.serviceName = cfg.ServiceName
		middlewares = append(middlewares, Tracing(tracingCfg))
	}

	if cfg.LoggerConfig != nil {
		loggerCfg := *cfg.LoggerConfig
		loggerCfg.serviceName = cfg.ServiceName
		middlewares = append(middlewares, Logger(loggerCfg))
	}

	middlewares = append(middlewares, cfg.Middleware...)

	handler := cfg.Handler
	if handler != nil && len(middlewares) > 0 {
		handler = Chain(middlewares...)(handler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
			TLSConfig:         cfg.TLSConfig,
		},
		config: cfg,
		logger: cfg.Logger,
	}
}

// ListenAndServe listens on Config.Addr and serves until shutdown.
//
// The server shuts down gracefully when ctx ends or SIGTERM/SIGINT is
// received. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln, false, "", "")
}

// ListenAndServeTLS is ListenAndServe over TLS with the given certificate
// and key files.
func (s *Server) ListenAndServeTLS(ctx context.Context, certFile, keyFile string) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln, true, certFile, keyFile)
}

// Serve serves on ln until shutdown, like ListenAndServe. The listener is
// closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.serve(ctx, ln, false, "", "")
}

func (s *Server) serve(
	ctx context.Context,
	ln net.Listener,
	useTLS bool,
	certFile, keyFile string,
) error {
	if s.config.Handler == nil {
		ln.Close()
		return errors.New("httpserver: handler is required (use WithHandler)")
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(shutdownChan)

	serverErrChan := make(chan error, 1)

	go func() {
		s.logger.Info().
			Str("addr", ln.Addr().String()).
			Bool("tls", useTLS).
			Str("service", s.config.ServiceName).
			Msg("server starting")

		var err error
		if useTLS {
			err = s.httpServer.ServeTLS(ln, certFile, keyFile)
		} else {
			err = s.httpServer.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
		close(serverErrChan)
	}()

	select {
	case err := <-serverErrChan:
		if err != nil {
			s.logger.Error().Err(err).Msg("server error")
			return err
		}
		return nil
	case sig := <-shutdownChan:
		s.logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received")
	case <-ctx.Done():
		s.logger.Info().
			Err(ctx.Err()).
			Msg("context cancelled, shutting down")
	}

	return s.shutdown(ctx)
}

func (s *Server) shutdown(ctx context.Context) error {
	s.logger.Info().
		Dur("timeout", s.config.ShutdownTimeout).
		Msg("starting graceful shutdown")

	// ctx is usually already done here.
	shutdownCtx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx),
		s.config.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().
			Err(err).
			Msg("graceful shutdown failed, forcing close")

		if closeErr := s.httpServer.Close(); closeErr != nil {
			s.logger.Error().Err(closeErr).Msg("force close failed")
		}
		return err
	}

	s.logger.Info().Msg("server stopped gracefully")
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ServiceName returns the configured service name.
func (s *Server) ServiceName() string {
	return s.config.ServiceName
}
