package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UPSTREAM_"

// Load reads the YAML file at path onto DefaultConfig, applies UPSTREAM_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides cfg with the variables
//
//	UPSTREAM_LOG_LEVEL, UPSTREAM_LOG_FORMAT,
//	UPSTREAM_SERVER_ADDR, UPSTREAM_SERVER_PROFILE,
//	UPSTREAM_SCHEME, UPSTREAM_HOST, UPSTREAM_PORT, UPSTREAM_TIMEOUT,
//	UPSTREAM_PROXY_URL, UPSTREAM_METRICS_ENABLED
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":      &cfg.Log.Level,
		"LOG_FORMAT":     &cfg.Log.Format,
		"SERVER_ADDR":    &cfg.Server.Addr,
		"SERVER_PROFILE": &cfg.Server.Profile,
		"SCHEME":         &cfg.Upstream.Scheme,
		"HOST":           &cfg.Upstream.Host,
		"PORT":           &cfg.Upstream.Port,
		"PROXY_URL":      &cfg.Upstream.ProxyURL,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Upstream.Timeout = d
	}

	if v, ok := lookup(EnvPrefix + "METRICS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Metrics.Enabled = b
	}

	return nil
}

func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}

	if cfg.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch cfg.Server.Profile {
	case ProfileDefault, ProfileProduction, ProfileDevelopment:
	default:
		return fmt.Errorf("server.profile must be default, production or development, got %q",
			cfg.Server.Profile)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}

	if cfg.Upstream.Scheme != "http" && cfg.Upstream.Scheme != "https" {
		return fmt.Errorf("upstream.scheme must be http or https, got %q", cfg.Upstream.Scheme)
	}
	if cfg.Upstream.Host == "" {
		return errors.New("upstream.host is required")
	}
	if strings.ContainsAny(cfg.Upstream.Host, "/?#") {
		return fmt.Errorf("upstream.host must be a bare host, got %q", cfg.Upstream.Host)
	}
	if cfg.Upstream.Port != "" {
		if p, err := strconv.Atoi(cfg.Upstream.Port); err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("upstream.port must be between 1 and 65535, got %q", cfg.Upstream.Port)
		}
	}
	if cfg.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	if cfg.Upstream.ProxyURL != "" {
		if _, err := url.Parse(cfg.Upstream.ProxyURL); err != nil {
			return fmt.Errorf("upstream.proxy_url: %w", err)
		}
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", cfg.Metrics.Path)
	}

	return nil
}
