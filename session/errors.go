package session

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors of the SDK taxonomy. Failures are wrapped and marked with
// one of these, so callers sort them with errors.Is regardless of the
// underlying cause.
var (
	// ErrAuthentication covers rejected grants, malformed token payloads and
	// failed refreshes. Never retried internally with the same credentials.
	ErrAuthentication = errors.New("isogeo: authentication failed")

	// ErrTransport covers network failures, timeouts and non-auth HTTP errors.
	ErrTransport = errors.New("isogeo: transport failure")

	// ErrSessionClosed is returned by any operation on a closed session.
	ErrSessionClosed = errors.New("isogeo: session is closed")
)

// APIError describes a non-2xx response from the Isogeo API.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
	// Body holds a truncated copy of the response body for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("isogeo: API responded %s on %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("isogeo: API responded %s on %s", e.Status, e.URL)
}

const maxErrorBody = 512

// CheckResponse turns a non-2xx response into an *APIError, marked with
// ErrAuthentication for 401/403 and ErrTransport otherwise. The response body
// is consumed and closed on failure. A 2xx response is returned untouched.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.URL = resp.Request.URL.String()
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errors.Mark(apiErr, ErrAuthentication)
	}
	return errors.Mark(apiErr, ErrTransport)
}
