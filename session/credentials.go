package session

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/isogeo/isogeo-sdk-go/platform"
)

// AuthMode selects the OAuth2 grant flow of a session. The flow is decided at
// construction and cannot change afterwards.
type AuthMode string

const (
	// AuthModeGroup is the client-credentials flow, used by "group"
	// applications registered in Isogeo Manager. Read-only API access.
	AuthModeGroup AuthMode = "group"

	// AuthModeUser is the resource-owner password flow, used by "user"
	// applications acting on behalf of an Isogeo account.
	AuthModeUser AuthMode = "user"
)

// Credentials identifies an application (and optionally a user) against the
// Isogeo ID service. Immutable once handed to NewSession.
type Credentials struct {
	ClientID     string
	ClientSecret string

	// AuthMode selects the grant flow. Defaults to AuthModeGroup.
	AuthMode AuthMode

	// Username and Password are required for AuthModeUser only.
	Username string
	Password string

	// Platform selects the deployment environment base URLs.
	// Defaults to platform.Prod.
	Platform platform.Platform

	// TokenURL overrides the platform token endpoint when set. Matches the
	// auto_refresh_url knob of the credential files.
	TokenURL string

	// Scopes requested with the grant. Defaults to "resources:read" when the
	// grant endpoint requires one; may stay empty.
	Scopes []string
}

// Validate reports whether the credentials are usable for their declared
// grant flow.
func (c Credentials) Validate() error {
	if c.ClientID == "" {
		return errors.New("isogeo: credentials: client ID is required")
	}
	if c.ClientSecret == "" {
		return errors.New("isogeo: credentials: client secret is required")
	}
	switch c.AuthMode {
	case AuthModeGroup, AuthMode(""):
	case AuthModeUser:
		if c.Username == "" || c.Password == "" {
			return errors.New("isogeo: credentials: user flow requires username and password")
		}
	default:
		return errors.Newf("isogeo: credentials: auth mode must be one of %s | %s, got %q",
			AuthModeGroup, AuthModeUser, c.AuthMode)
	}
	return nil
}

// mode returns the effective grant flow.
func (c Credentials) mode() AuthMode {
	if c.AuthMode == "" {
		return AuthModeGroup
	}
	return c.AuthMode
}

// Token is a read-only snapshot of the bearer token held by a session. The
// session owns the live token; snapshots never mutate it.
type Token struct {
	AccessToken  string
	TokenType    string
	Expiry       time.Time
	RefreshToken string
}

// Valid reports whether the token carries an access token that has not
// expired yet.
func (t Token) Valid() bool {
	if t.AccessToken == "" {
		return false
	}
	if t.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(t.Expiry)
}
