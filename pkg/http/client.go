package http

import (
	"net"
	"net/http"
	"time"
)

// Timeouts bounds each phase of an outbound call. Zero fields keep the defaults.
type Timeouts struct {
	Request        time.Duration
	Dial           time.Duration
	KeepAlive      time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
	IdleConn       time.Duration
}

var defaultTimeouts = Timeouts{
	Request:        30 * time.Second,
	Dial:           10 * time.Second,
	KeepAlive:      90 * time.Second,
	TLSHandshake:   10 * time.Second,
	ResponseHeader: 20 * time.Second,
	IdleConn:       90 * time.Second,
}

type clientConfig struct {
	timeouts     Timeouts
	maxIdleConns int
	wrappers     []TransportFunc
}

// TransportFunc decorates a RoundTripper.
type TransportFunc func(http.RoundTripper) http.RoundTripper

// NewClient builds a pooled *http.Client. Transport wrappers are applied in
// order, so the last one added sees the request first.
func NewClient(opts ...Option) *http.Client {
	cfg := &clientConfig{
		timeouts:     defaultTimeouts,
		maxIdleConns: 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	t := cfg.timeouts
	dialer := &net.Dialer{Timeout: t.Dial, KeepAlive: t.KeepAlive}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConns,
		TLSHandshakeTimeout:   t.TLSHandshake,
		ResponseHeaderTimeout: t.ResponseHeader,
		IdleConnTimeout:       t.IdleConn,
	}
	for _, wrap := range cfg.wrappers {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   t.Request,
		Transport: rt,
	}
}

func mergeTimeouts(base, override Timeouts) Timeouts {
	pick := func(a, b time.Duration) time.Duration {
		if b > 0 {
			return b
		}
		return a
	}
	return Timeouts{
		Request:        pick(base.Request, override.Request),
		Dial:           pick(base.Dial, override.Dial),
		KeepAlive:      pick(base.KeepAlive, override.KeepAlive),
		TLSHandshake:   pick(base.TLSHandshake, override.TLSHandshake),
		ResponseHeader: pick(base.ResponseHeader, override.ResponseHeader),
		IdleConn:       pick(base.IdleConn, override.IdleConn),
	}
}
