package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config is the root configuration of the binaries.
type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	Upstream Upstream `yaml:"upstream"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Log configures the process logger.
type Log struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// Server configures the HTTP listener of proxyd.
type Server struct {
	Addr string `yaml:"addr"`

	// Profile picks the timeout preset: default, production or development.
	Profile string `yaml:"profile"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Upstream describes the service requests are sent to.
type Upstream struct {
	Name    string            `yaml:"name"`
	Scheme  string            `yaml:"scheme"`
	Host    string            `yaml:"host"`
	Port    string            `yaml:"port,omitempty"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers,omitempty"`

	// ProxyURL routes requests through an HTTP proxy.
	ProxyURL string `yaml:"proxy_url,omitempty"`

	// NetworkTrace records DNS, connect, TLS and first-byte timings.
	NetworkTrace bool `yaml:"network_trace"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Profiles accepted by Server.Profile.
const (
	ProfileDefault     = "default"
	ProfileProduction  = "production"
	ProfileDevelopment = "development"
)

// DefaultConfig returns the configuration used for every key the file and
// the environment leave unset.
func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Server: Server{
			Addr:            ":8080",
			Profile:         ProfileDefault,
			ShutdownTimeout: 10 * time.Second,
		},
		Upstream: Upstream{
			Name:    "httpbin",
			Scheme:  "http",
			Host:    "httpbin.org",
			Timeout: 20 * time.Second,
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Logger builds the process logger writing to w.
func (l Log) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// StdoutLogger is Logger writing to os.Stdout.
func (l Log) StdoutLogger() zerolog.Logger {
	return l.Logger(os.Stdout)
}
