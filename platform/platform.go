// Package platform resolves Isogeo deployment environments to their base URLs.
//
// Isogeo runs three environments (production, quality assurance and
// integration), each with its own API root, ID (token) endpoint and companion
// web applications. Credential files only carry the token URL, so helpers are
// provided to derive the API root and to guess the platform from any Isogeo
// URL.
package platform

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Platform identifies an Isogeo deployment environment.
type Platform string

// Known platforms.
const (
	Prod Platform = "prod"
	QA   Platform = "qa"
	Int  Platform = "int"

	// Unknown is returned by Guess when a URL does not match any environment.
	Unknown Platform = "unknown"
)

// Endpoints carries the base URLs of one platform.
type Endpoints struct {
	// API is the REST API root, e.g. "https://v1.api.isogeo.com".
	API string
	// Token is the OAuth2 token endpoint on the ID service.
	Token string
	// App is the main web application.
	App string
	// Manage is the administration console.
	Manage string
	// OpenCatalog is the public catalog viewer.
	OpenCatalog string
	// CSW is the OGC CSW services root.
	CSW string
	// VerifyTLS reports whether TLS certificates should be verified. The QA
	// and integration environments use self-signed certificates.
	VerifyTLS bool
}

var endpoints = map[Platform]Endpoints{
	Prod: {
		API:         "https://v1.api.isogeo.com",
		Token:       "https://id.api.isogeo.com/oauth/token",
		App:         "https://app.isogeo.com",
		Manage:      "https://manage.isogeo.com",
		OpenCatalog: "https://open.isogeo.com",
		CSW:         "https://services.api.isogeo.com",
		VerifyTLS:   true,
	},
	QA: {
		API:         "https://api.qa.isogeo.com",
		Token:       "https://id.api.qa.isogeo.com/oauth/token",
		App:         "https://qa-isogeo-app.azurewebsites.net",
		Manage:      "https://qa-isogeo-manage.azurewebsites.net",
		OpenCatalog: "https://qa-isogeo-open.azurewebsites.net",
		CSW:         "http://services.api.qa.isogeo.com",
		VerifyTLS:   false,
	},
	Int: {
		API:         "https://api.int.isogeo.com",
		Token:       "https://id.api.int.isogeo.com/oauth/token",
		App:         "https://int-isogeo-app.azurewebsites.net",
		Manage:      "https://int-isogeo-manage.azurewebsites.net",
		OpenCatalog: "https://int-isogeo-open.azurewebsites.net",
		CSW:         "http://services.api.int.isogeo.com",
		VerifyTLS:   false,
	},
}

// ForPlatform returns the endpoints of the given platform.
func ForPlatform(p Platform) (Endpoints, error) {
	ep, ok := endpoints[Platform(strings.ToLower(string(p)))]
	if !ok {
		return Endpoints{}, errors.Newf("platform: must be one of prod | qa | int, got %q", p)
	}
	return ep, nil
}

// Guess returns the platform a given Isogeo URL belongs to, or Unknown for
// URLs outside the known environments (on-premises deployments typically).
func Guess(rawURL string) Platform {
	switch {
	case strings.Contains(rawURL, "api.qa.isogeo.com"),
		strings.Contains(rawURL, "qa.") && strings.Contains(rawURL, "isogeo"),
		strings.Contains(rawURL, "qa-") && strings.Contains(rawURL, "isogeo"):
		return QA
	case strings.Contains(rawURL, "api.int.isogeo.com"),
		strings.Contains(rawURL, "int.") && strings.Contains(rawURL, "isogeo"),
		strings.Contains(rawURL, "int-") && strings.Contains(rawURL, "isogeo"):
		return Int
	case strings.Contains(rawURL, "api.isogeo.com"),
		strings.Contains(rawURL, "app.isogeo.com"):
		return Prod
	default:
		return Unknown
	}
}

// APIBaseFromTokenURL derives the REST API root from a token endpoint URL,
// the only URL guaranteed to appear in credential files. The production ID
// host "id.api.isogeo.com" maps to "v1.api.isogeo.com"; QA and integration
// hosts simply drop the "id." prefix.
func APIBaseFromTokenURL(tokenURL string) (string, error) {
	u, err := url.Parse(tokenURL)
	if err != nil {
		return "", errors.Wrapf(err, "platform: invalid token URL %q", tokenURL)
	}
	if u.Host == "" {
		return "", errors.Newf("platform: token URL %q has no host", tokenURL)
	}

	host := u.Host
	switch Guess(tokenURL) {
	case Prod:
		host = strings.Replace(host, "id.", "v1.", 1)
	default:
		host = strings.TrimPrefix(host, "id.")
	}

	derived := url.URL{Scheme: u.Scheme, Host: host}
	return derived.String(), nil
}
