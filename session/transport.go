package session

import (
	"net/http"
)

// BearerTransport is an http.RoundTripper that injects the session's bearer
// token into outgoing requests, refreshing it first when needed. It lets the
// session plug into any *http.Client, for callers who prefer the standard
// client API over Session.Request.
type BearerTransport struct {
	// Base is the underlying transport. Nil means http.DefaultTransport.
	Base http.RoundTripper

	// Session provides and refreshes the bearer token.
	Session *Session
}

// Transport returns a bearer-injecting RoundTripper bound to this session.
// The base transport defaults to the session's own transport so proxy and TLS
// settings carry over.
func (s *Session) Transport(base http.RoundTripper) *BearerTransport {
	if base == nil {
		base = s.httpClient.Transport
	}
	return &BearerTransport{Base: base, Session: s}
}

// RoundTrip implements http.RoundTripper. It ensures a valid token using the
// request context, clones the request, sets the Authorization header and
// delegates to the base transport.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.Session.EnsureValidToken(req.Context())
	if err != nil {
		return nil, err
	}

	// Clone to avoid mutating the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.Session.userAgent)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
