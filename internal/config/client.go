package config

import (
	"fmt"
	"net/url"

	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/rs/zerolog"
)

// ClientOptions returns the httpclient options described by u.
func (u Upstream) ClientOptions(logger zerolog.Logger) ([]httpclient.Option, error) {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = u.Timeout

	opts := []httpclient.Option{
		httpclient.WithConfig(httpCfg),
		httpclient.WithServiceName(u.Name),
		httpclient.WithLogger(logger),
	}

	if len(u.Headers) > 0 {
		opts = append(opts, httpclient.WithDefaultHeaders(u.Headers))
	}

	if u.ProxyURL != "" {
		proxy, err := url.Parse(u.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		opts = append(opts, httpclient.WithProxyURL(proxy))
	}

	if u.NetworkTrace {
		opts = append(opts, httpclient.WithNetworkTrace())
	}

	return opts, nil
}
