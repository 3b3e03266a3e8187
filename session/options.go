package session

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/isogeo/isogeo-sdk-go/platform"
)

// Option is a functional option for configuring a Session.
type Option func(*Session)

// WithHTTPClient sets a fully custom HTTP client. Transport-related options
// (timeout, proxy, TLS) are ignored when a client is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Session) {
		s.httpClient = client
	}
}

// WithBaseTransport sets the transport the session builds its client on.
// Useful for middleware or in-memory transports in tests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(s *Session) {
		s.baseTransport = rt
	}
}

// WithTimeout sets the per-request timeout. Default is 45 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.timeout = timeout
	}
}

// WithProxy routes all requests, token grants included, through the given
// proxy URL.
func WithProxy(proxyURL *url.URL) Option {
	return func(s *Session) {
		s.proxyURL = proxyURL
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. The QA and
// integration platforms use self-signed certificates; never use this against
// production.
func WithInsecureSkipVerify() Option {
	return func(s *Session) {
		s.insecureTLS = true
	}
}

// WithUserAgent customizes the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxRetries caps how many times a request is retried on 502/503/504
// responses or connection errors. Default is 2; 0 disables retries.
func WithMaxRetries(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithExpiryLeeway sets the safety margin subtracted from the token expiry
// when deciding whether a refresh is due. Default is 30 seconds.
func WithExpiryLeeway(leeway time.Duration) Option {
	return func(s *Session) {
		if leeway > 0 {
			s.leeway = leeway
		}
	}
}

// WithLogger enables logging of connect, refresh and retry events.
// The default is no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithEndpoints overrides the platform endpoint table, for on-premises
// deployments that mirror the Isogeo stack under custom hosts.
func WithEndpoints(ep platform.Endpoints) Option {
	return func(s *Session) {
		s.endpoints = ep
	}
}

// buildHTTPClient assembles the session's HTTP client from the configured
// transport options, unless WithHTTPClient supplied one.
func (s *Session) buildHTTPClient() {
	if s.httpClient != nil {
		return
	}

	transport := s.baseTransport
	if transport == nil {
		base, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			// Default transport replaced by a test stub; use it as-is.
			s.httpClient = &http.Client{Transport: http.DefaultTransport, Timeout: s.timeout}
			return
		}
		cloned := base.Clone()
		if s.proxyURL != nil {
			cloned.Proxy = http.ProxyURL(s.proxyURL)
		}
		if cloned.TLSClientConfig == nil {
			cloned.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if s.insecureTLS || !s.endpoints.VerifyTLS {
			cloned.TLSClientConfig.InsecureSkipVerify = true // #nosec G402
		}
		transport = cloned
	}

	s.httpClient = &http.Client{
		Transport: transport,
		Timeout:   s.timeout,
	}
}
