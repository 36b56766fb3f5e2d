package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

type Option func(*clientConfig)

// WithTimeouts overrides the non-zero fields of t.
func WithTimeouts(t Timeouts) Option {
	return func(c *clientConfig) {
		c.timeouts = mergeTimeouts(c.timeouts, t)
	}
}

func WithMaxIdleConns(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxIdleConns = n
		}
	}
}

func WithTransport(fn TransportFunc) Option {
	return func(c *clientConfig) {
		c.wrappers = append(c.wrappers, fn)
	}
}

// WithUserAgent sets User-Agent on requests that do not carry one.
func WithUserAgent(ua string) Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("User-Agent") != "" {
				return rt.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set("User-Agent", ua)
			return rt.RoundTrip(req)
		})
	})
}

// WithRequestID forwards the inbound chi request id as X-Request-ID.
func WithRequestID() Option {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return roundTripFunc(func(req *http.Request) (*http.Response, error) {
			id := middleware.GetReqID(req.Context())
			if id == "" || req.Header.Get(middleware.RequestIDHeader) != "" {
				return rt.RoundTrip(req)
			}
			req = req.Clone(req.Context())
			req.Header.Set(middleware.RequestIDHeader, id)
			return rt.RoundTrip(req)
		})
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
