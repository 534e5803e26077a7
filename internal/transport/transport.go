// Package transport builds the HTTP client shared by providers and maps
// HTTP responses onto the provider error taxonomy.
package transport

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/mydehq/lrcfetch/internal/types"
	"github.com/mydehq/lrcfetch/internal/version"
)

// DefaultTimeout bounds a single provider request
const DefaultTimeout = 30 * time.Second

var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        20,
	MaxIdleConnsPerHost: 5,
	DialContext: (&net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	IdleConnTimeout:       90 * time.Second,
}

// Options configures NewClient
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Base replaces the shared transport, mostly for tests
	Base http.RoundTripper
}

// NewClient returns a client with its own session cookie jar. Cookies are
// scoped by the public suffix list so a session set for one provider never
// leaks to a sibling domain.
func NewClient(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	base := opts.Base
	if base == nil {
		base = sharedTransport
	}

	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{
		Timeout:   opts.Timeout,
		Jar:       jar,
		Transport: &headerTransport{base: base, userAgent: opts.UserAgent},
	}
}

type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ua, accept := req.Header.Get("User-Agent"), req.Header.Get("Accept")
	if ua != "" && accept != "" {
		return t.base.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	if ua == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if accept == "" {
		req.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(req)
}

// CheckStatus maps a non-2xx response to a taxonomy error for provider.
func CheckStatus(provider string, resp *http.Response) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return types.ErrLyricsNotFound{Provider: provider}
	case code == http.StatusTooManyRequests:
		return types.ErrRateLimited{Provider: provider, RetryAfter: RetryAfter(resp.Header.Get("Retry-After"), time.Now())}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return types.ErrAuth{Provider: provider, Reason: http.StatusText(code)}
	default:
		return types.ErrAPIError{Service: provider, StatusCode: code, Message: http.StatusText(code)}
	}
}

// RetryAfter parses a Retry-After header given as seconds or an HTTP date.
// Unparsable or past values give zero.
func RetryAfter(header string, now time.Time) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
