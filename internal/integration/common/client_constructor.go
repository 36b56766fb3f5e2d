package common

import (
	"net/http"

	"github.com/futig/style-backend/internal/config"
	pkgHTTP "github.com/futig/style-backend/pkg/http"
)

const userAgent = "style-backend/1.0"

// NewHTTPClient builds the outbound client shared by remote connectors.
func NewHTTPClient(cfg config.HTTPClientConfig) *http.Client {
	return pkgHTTP.NewClient(
		pkgHTTP.WithTimeouts(pkgHTTP.Timeouts{
			Request:        cfg.RequestTimeout,
			Dial:           cfg.ConnTimeout,
			KeepAlive:      cfg.KeepAlive,
			IdleConn:       cfg.IdleConnTimeout,
			ResponseHeader: cfg.ResponseHeaderTimeout,
		}),
		pkgHTTP.WithUserAgent(userAgent),
		pkgHTTP.WithRequestID(),
		pkgHTTP.WithRequestLogging(),
	)
}
