package infrastructure

import (
	"net"
	"net/http"
	"time"

	resty "github.com/go-resty/resty/v2"

	"lfscli/internal/config"
)

const (
	DialTimeout     = 30 * time.Second
	KeepAlive       = 30 * time.Second
	IdleConnTimeout = 90 * time.Second
	MaxIdleConns    = 4
)

// NewHTTPClient returns the resty client shared by the page fetcher and the
// downloader. It sends the configured User-Agent and never retries.
func NewHTTPClient(cfg config.SourceConfig) *resty.Client {
	c := resty.New()
	c.SetHeader("User-Agent", cfg.UserAgent)
	c.SetTimeout(cfg.Timeout)
	c.SetTransport(createTransport())
	c.SetRetryCount(0)
	return c
}

func createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: KeepAlive,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          MaxIdleConns,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
