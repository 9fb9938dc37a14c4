package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused across all pooled clients so repeated calls to
// the same catalog or search host reuse connections instead of paying a new
// TLS handshake per request.
var sharedTransport = &http.Transport{
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     120 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client that shares a connection pool with
// other pooled clients. The timeout is a backstop only; per-request
// deadlines come from the caller's context.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
