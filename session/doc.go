// Package session manages authenticated access to the Isogeo API.
//
// A Session owns one set of OAuth2 credentials and the current bearer token.
// It supports the two grant flows Isogeo applications use: client credentials
// ("group" applications, read-only) and resource-owner password ("user"
// applications). Tokens are refreshed lazily: every request checks the expiry
// with a safety leeway and refreshes at most once, and concurrent callers
// wait on the in-flight refresh instead of duplicating it.
//
// # Quick Start
//
//	creds := session.Credentials{
//	    ClientID:     "my-app-uuid",
//	    ClientSecret: "my-app-secret",
//	    AuthMode:     session.AuthModeGroup,
//	    Platform:     platform.Prod,
//	}
//
//	s, err := session.NewSession(creds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if _, err := s.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := s.Request(ctx, http.MethodGet, "/resources/search",
//	    session.WithQueryParam("q", "keyword:isogeo:formations"))
//
// # Errors
//
// Failures are marked with the package sentinels so callers can sort them
// with errors.Is: ErrAuthentication (rejected grants, failed refreshes),
// ErrTransport (network, timeout, gateway errors) and ErrSessionClosed (use
// after Close). Authentication failures are never retried internally.
package session
