// Package testutil provides in-memory test doubles for the Isogeo ID service
// and REST API. No sockets are involved: a recording RoundTripper routes
// token grants and API calls to configurable handlers, so tests can assert
// exactly which grants hit the wire.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// RoundTripFunc allows inlining http.RoundTripper implementations.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls the underlying function.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// MockPlatform simulates the Isogeo ID token endpoint and the REST API behind
// a single in-memory transport. Requests to a path containing "/oauth/token"
// go to TokenHandler, everything else to APIHandler. All requests and the
// parsed grant forms are recorded.
type MockPlatform struct {
	// TokenHandler serves token grant requests. Defaults to a successful
	// client-credentials response.
	TokenHandler RoundTripFunc

	// APIHandler serves resource requests. Defaults to 200 with an empty
	// JSON object.
	APIHandler RoundTripFunc

	mu            sync.Mutex
	tokenRequests []*http.Request
	grantForms    []url.Values
	apiRequests   []*http.Request
}

// NewMockPlatform builds a mock platform with default handlers.
func NewMockPlatform(tb testing.TB) *MockPlatform {
	tb.Helper()

	return &MockPlatform{
		TokenHandler: TokenResponse("mock-access-token", 3600, ""),
		APIHandler:   StaticJSONResponse(http.StatusOK, `{}`),
	}
}

// RoundTrip implements http.RoundTripper, recording the request before
// dispatching it to the matching handler.
func (m *MockPlatform) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Path, "/oauth/token") {
		form := m.captureForm(req)

		m.mu.Lock()
		m.tokenRequests = append(m.tokenRequests, req)
		m.grantForms = append(m.grantForms, form)
		m.mu.Unlock()

		resp, err := m.TokenHandler(req)
		return m.finish(req, resp, err)
	}

	m.mu.Lock()
	m.apiRequests = append(m.apiRequests, req)
	m.mu.Unlock()

	resp, err := m.APIHandler(req)
	return m.finish(req, resp, err)
}

// captureForm reads and restores the request body, returning the parsed form.
func (m *MockPlatform) captureForm(req *http.Request) url.Values {
	if req.Body == nil {
		return url.Values{}
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return url.Values{}
	}
	form, err := url.ParseQuery(string(data))
	if err != nil {
		return url.Values{}
	}
	return form
}

func (m *MockPlatform) finish(req *http.Request, resp *http.Response, err error) (*http.Response, error) {
	if err != nil {
		return nil, err
	}
	if resp.Request == nil {
		resp.Request = req
	}
	return resp, nil
}

// TokenRequestCount returns how many grant requests were issued.
func (m *MockPlatform) TokenRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokenRequests)
}

// APIRequestCount returns how many resource requests were issued.
func (m *MockPlatform) APIRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.apiRequests)
}

// GrantForms returns a copy of the parsed form body of every grant request,
// in order of arrival.
func (m *MockPlatform) GrantForms() []url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	forms := make([]url.Values, len(m.grantForms))
	copy(forms, m.grantForms)
	return forms
}

// APIRequests returns a copy of the recorded resource requests.
func (m *MockPlatform) APIRequests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	reqs := make([]*http.Request, len(m.apiRequests))
	copy(reqs, m.apiRequests)
	return reqs
}

// TokenResponse returns a handler serving a successful grant response.
// refreshToken may be empty, matching the group flow which never gets one.
func TokenResponse(accessToken string, expiresIn int, refreshToken string) RoundTripFunc {
	body := fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":%d`, accessToken, expiresIn)
	if refreshToken != "" {
		body += fmt.Sprintf(`,"refresh_token":%q`, refreshToken)
	}
	body += "}"
	return StaticJSONResponse(http.StatusOK, body)
}

// StaticJSONResponse returns a handler that always responds with the given
// status and JSON body.
func StaticJSONResponse(status int, body string) RoundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: status,
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

// Response builds an arbitrary response with the given headers.
func Response(status int, header http.Header, body string) RoundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		if header == nil {
			header = make(http.Header)
		}
		return &http.Response{
			StatusCode: status,
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}
