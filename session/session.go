package session

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/isogeo/isogeo-sdk-go/platform"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version of the SDK, reported in the default User-Agent.
const Version = "0.1.0"

const (
	defaultTimeout    = 45 * time.Second
	defaultLeeway     = 30 * time.Second
	defaultMaxRetries = 2
	defaultUserAgent  = "isogeo-sdk-go/" + Version

	// retryBackoff spaces bounded retries of 502/503/504 responses.
	retryBackoff = 250 * time.Millisecond
)

// Session authenticates requests against the Isogeo API. It owns one set of
// credentials and the current bearer token, refreshing it lazily when a
// request finds it within the expiry leeway.
//
// Lifecycle: a new session holds no token until Connect succeeds; Close is
// terminal. A session is safe for concurrent use; token refresh is serialized
// so concurrent callers wait on an in-flight refresh instead of duplicating
// it.
type Session struct {
	creds     Credentials
	endpoints platform.Endpoints
	tokenURL  string

	httpClient *http.Client
	userAgent  string
	maxRetries int
	leeway     time.Duration
	logger     *slog.Logger

	// transport construction knobs, consumed by buildHTTPClient
	timeout       time.Duration
	baseTransport http.RoundTripper
	proxyURL      *url.URL
	insecureTLS   bool

	mu        sync.RWMutex
	token     *oauth2.Token
	connected bool
	closed    bool
}

// NewSession validates the credentials, resolves the platform endpoints and
// builds the HTTP transport. No network call is made; call Connect next.
func NewSession(creds Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		creds:      creds,
		userAgent:  defaultUserAgent,
		maxRetries: defaultMaxRetries,
		leeway:     defaultLeeway,
		timeout:    defaultTimeout,
	}

	p := creds.Platform
	if p == "" {
		p = platform.Prod
	}
	ep, err := platform.ForPlatform(p)
	if err != nil {
		if creds.TokenURL == "" {
			return nil, err
		}
		// On-premises deployments carry only a token URL in their credential
		// files; derive the API root from it.
		api, derr := platform.APIBaseFromTokenURL(creds.TokenURL)
		if derr != nil {
			return nil, err
		}
		ep = platform.Endpoints{API: api, Token: creds.TokenURL, VerifyTLS: true}
	}
	s.endpoints = ep

	for _, opt := range opts {
		opt(s)
	}

	s.tokenURL = s.endpoints.Token
	if creds.TokenURL != "" {
		s.tokenURL = creds.TokenURL
	}

	s.buildHTTPClient()
	return s, nil
}

// Endpoints returns the base URLs the session resolves relative paths
// against.
func (s *Session) Endpoints() platform.Endpoints {
	return s.endpoints
}

// Connect performs the grant flow decided by the credentials and stores the
// resulting token. Any failure, rejected grant, malformed payload or network
// error, is marked ErrAuthentication and leaves the session unconnected.
func (s *Session) Connect(ctx context.Context) (Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Token{}, errors.Mark(errors.New("isogeo: connect"), ErrSessionClosed)
	}

	tok, err := s.fetchGrantLocked(ctx)
	if err != nil {
		return Token{}, markAuth(err, "connect")
	}

	s.token = tok
	s.connected = true
	s.logf("isogeo: connected", slog.String("auth_mode", string(s.creds.mode())),
		slog.Time("token_expiry", tok.Expiry))

	return snapshot(tok), nil
}

// EnsureValidToken returns the current token while its expiry is further away
// than the leeway; otherwise it performs exactly one refresh, using the
// refresh token when present and re-running the original grant when not.
// Concurrent callers block on the in-flight refresh. Safe to call before
// every outbound request.
func (s *Session) EnsureValidToken(ctx context.Context) (Token, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Fast path: valid token under the read lock.
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return Token{}, errors.Mark(errors.New("isogeo: ensure token"), ErrSessionClosed)
	}
	if !s.connected {
		s.mu.RUnlock()
		return Token{}, errors.Mark(errors.New("isogeo: no token held, call Connect first"), ErrAuthentication)
	}
	if s.tokenValidLocked() {
		tok := snapshot(s.token)
		s.mu.RUnlock()
		return tok, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock: another caller may have
	// refreshed while we waited.
	if s.closed {
		return Token{}, errors.Mark(errors.New("isogeo: ensure token"), ErrSessionClosed)
	}
	if !s.connected {
		return Token{}, errors.Mark(errors.New("isogeo: no token held, call Connect first"), ErrAuthentication)
	}
	if s.tokenValidLocked() {
		return snapshot(s.token), nil
	}

	tok, err := s.refreshLocked(ctx)
	if err != nil {
		return Token{}, markAuth(err, "refresh token")
	}

	s.token = tok
	s.logf("isogeo: token refreshed", slog.Time("token_expiry", tok.Expiry))
	return snapshot(tok), nil
}

// Token returns a read-only snapshot of the current token, and false when the
// session holds none.
func (s *Session) Token() (Token, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return Token{}, false
	}
	return snapshot(s.token), true
}

// Request ensures a valid token, attaches the bearer header and delegates to
// the transport. 502/503/504 responses and connection errors are retried up
// to the configured maximum; transport failures are marked ErrTransport,
// distinct from authentication failures. The HTTP status of the returned
// response is not interpreted; use CheckResponse for that.
func (s *Session) Request(ctx context.Context, method, path string, opts ...RequestOption) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	tok, err := s.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	ro := newRequestOptions()
	for _, opt := range opts {
		opt(ro)
	}

	body, contentType, err := ro.payload()
	if err != nil {
		return nil, errors.Wrap(err, "isogeo: encode request body")
	}

	u, err := s.resolveURL(path, ro.query)
	if err != nil {
		return nil, errors.Mark(err, ErrTransport)
	}

	for attempt := 0; ; attempt++ {
		req, err := s.newRequest(ctx, method, u, body, contentType, tok, ro.header)
		if err != nil {
			return nil, errors.Mark(err, ErrTransport)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if attempt < s.maxRetries && ctx.Err() == nil {
				s.logf("isogeo: retrying after connection error",
					slog.String("url", u), slog.Int("attempt", attempt+1))
				time.Sleep(retryBackoff)
				continue
			}
			return nil, errors.Mark(errors.Wrapf(err, "isogeo: %s %s", method, u), ErrTransport)
		}

		if attempt < s.maxRetries && retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			s.logf("isogeo: retrying after gateway error",
				slog.String("url", u), slog.Int("status", resp.StatusCode), slog.Int("attempt", attempt+1))
			time.Sleep(retryBackoff)
			continue
		}
		return resp, nil
	}
}

// Close invalidates the token and releases idle transport connections.
// Terminal: every later operation fails with ErrSessionClosed. Closing twice
// is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.connected = false
	s.token = nil
	s.httpClient.CloseIdleConnections()
	return nil
}

// fetchGrantLocked runs the grant flow of the session's auth mode. The write
// lock must be held.
func (s *Session) fetchGrantLocked(ctx context.Context) (*oauth2.Token, error) {
	ctx = s.grantContext(ctx)
	switch s.creds.mode() {
	case AuthModeUser:
		return s.oauthConfig().PasswordCredentialsToken(ctx, s.creds.Username, s.creds.Password)
	default:
		conf := &clientcredentials.Config{
			ClientID:     s.creds.ClientID,
			ClientSecret: s.creds.ClientSecret,
			TokenURL:     s.tokenURL,
			Scopes:       s.creds.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		return conf.Token(ctx)
	}
}

// refreshLocked obtains a fresh token: a refresh-token grant when one is
// held, the original grant otherwise (the group flow never receives a refresh
// token). The write lock must be held.
func (s *Session) refreshLocked(ctx context.Context) (*oauth2.Token, error) {
	if s.token != nil && s.token.RefreshToken != "" {
		// Seed the source with only the refresh token so a refresh grant is
		// issued now instead of the expired access token being reused.
		src := s.oauthConfig().TokenSource(s.grantContext(ctx), &oauth2.Token{
			RefreshToken: s.token.RefreshToken,
		})
		return src.Token()
	}
	return s.fetchGrantLocked(ctx)
}

func (s *Session) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.creds.ClientID,
		ClientSecret: s.creds.ClientSecret,
		Scopes:       s.creds.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// grantContext routes token requests through the session's HTTP client so
// proxy and TLS settings apply to grants too.
func (s *Session) grantContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// tokenValidLocked reports whether the held token is usable with the leeway
// safety window. Either lock must be held.
func (s *Session) tokenValidLocked() bool {
	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	if s.token.Expiry.IsZero() {
		return true
	}
	return time.Until(s.token.Expiry) > s.leeway
}

func (s *Session) newRequest(ctx context.Context, method, u string, body []byte, contentType string, tok Token, header http.Header) (*http.Request, error) {
	var reader *bytes.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, u, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("User-Agent", s.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// resolveURL joins a relative path with the API base, passing absolute URLs
// through untouched, and merges the extra query values.
func (s *Session) resolveURL(path string, q url.Values) (string, error) {
	raw := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		raw = strings.TrimRight(s.endpoints.API, "/") + "/" + strings.TrimLeft(path, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(err, "isogeo: invalid request path %q", path)
	}
	if len(q) > 0 {
		merged := u.Query()
		for k, vs := range q {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

func (s *Session) logf(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func markAuth(err error, op string) error {
	return errors.Mark(errors.Wrapf(err, "isogeo: %s", op), ErrAuthentication)
}

func snapshot(tok *oauth2.Token) Token {
	return Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		RefreshToken: tok.RefreshToken,
	}
}
