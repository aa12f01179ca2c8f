package supabase

import (
	"net"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the total request timeout.
	DefaultTimeout = 10 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 8 * time.Second
)

// NewHTTPClient creates an HTTP client tuned for PostgREST round-trips.
// Redirects are not followed so the service-role key never leaves the
// configured host.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Header names used by PostgREST.
const (
	HeaderAPIKey = "apikey"
	HeaderPrefer = "Prefer"

	// singleObjectMediaType asks PostgREST for exactly one row; zero rows
	// produce a PGRST116 error instead of an empty array.
	singleObjectMediaType = "application/vnd.pgrst.object+json"
)

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set(HeaderAPIKey, s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("User-Agent", "licensegate/1.0")
}
