// Package credentials loads Isogeo API credentials from the file formats the
// vendor tooling produces: the client_secrets.json exported by Isogeo Manager,
// legacy INI files with an [auth] section, and ISOGEO_* environment variables
// (optionally loaded from a dotenv file).
//
// Whatever the source, the result is a session.Credentials with the platform
// guessed from the token URL, ready to hand to session.NewSession.
package credentials

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/ini.v1"

	"github.com/isogeo/isogeo-sdk-go/platform"
	"github.com/isogeo/isogeo-sdk-go/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrCredentialsFormat reports an unreadable or structurally invalid
// credentials source.
var ErrCredentialsFormat = errors.New("credentials: invalid format")

// Environment variable names recognized by FromEnv.
const (
	EnvClientID     = "ISOGEO_API_CLIENT_ID"
	EnvClientSecret = "ISOGEO_API_CLIENT_SECRET"
	EnvAuthMode     = "ISOGEO_AUTH_MODE"
	EnvPlatform     = "ISOGEO_PLATFORM"
	EnvUserName     = "ISOGEO_USER_NAME"
	EnvUserPassword = "ISOGEO_USER_PASSWORD"
	EnvTokenURL     = "ISOGEO_ID_URL_TOKEN"
)

// Load reads a credentials file, dispatching on the extension: ".json" for
// Isogeo Manager exports, ".ini" for legacy [auth] files.
func Load(path string) (session.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Credentials{}, errors.Wrapf(err, "credentials: reading %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".ini":
		return ParseINI(data)
	default:
		return session.Credentials{}, errors.Mark(
			errors.Newf("credentials: extension of %s must be .json or .ini", path),
			ErrCredentialsFormat,
		)
	}
}

// jsonApp is the per-application object of a Manager export.
type jsonApp struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
	Scopes       []string `json:"scopes"`
}

// jsonSecrets is the top level of a client_secrets.json file. Manager exports
// group applications under "web" and user applications under "installed".
type jsonSecrets struct {
	Web       *jsonApp `json:"web"`
	Installed *jsonApp `json:"installed"`
}

// ParseJSON decodes an Isogeo Manager client_secrets.json export.
func ParseJSON(data []byte) (session.Credentials, error) {
	var secrets jsonSecrets
	if err := json.Unmarshal(data, &secrets); err != nil {
		return session.Credentials{}, errors.Mark(
			errors.Wrap(err, "credentials: decoding JSON"), ErrCredentialsFormat)
	}

	var (
		app  *jsonApp
		mode session.AuthMode
	)
	switch {
	case secrets.Web != nil:
		app, mode = secrets.Web, session.AuthModeGroup
	case secrets.Installed != nil:
		app, mode = secrets.Installed, session.AuthModeUser
	default:
		return session.Credentials{}, errors.Mark(
			errors.New(`credentials: first key must be one of "web" or "installed"`),
			ErrCredentialsFormat,
		)
	}

	creds := session.Credentials{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		AuthMode:     mode,
		TokenURL:     app.TokenURI,
		Scopes:       app.Scopes,
		Platform:     platform.Guess(app.TokenURI),
	}
	// Former exports carry no scopes field.
	if len(creds.Scopes) == 0 {
		creds.Scopes = []string{"resources:read"}
	}
	return creds, checkRequired(creds)
}

// ParseINI decodes a legacy INI credentials file with an [auth] section.
func ParseINI(data []byte) (session.Credentials, error) {
	file, err := ini.Load(data)
	if err != nil {
		return session.Credentials{}, errors.Mark(
			errors.Wrap(err, "credentials: parsing INI"), ErrCredentialsFormat)
	}

	auth, err := file.GetSection("auth")
	if err != nil {
		return session.Credentials{}, errors.Mark(
			errors.New("credentials: section must be named [auth]"), ErrCredentialsFormat)
	}

	tokenURL := auth.Key("URI_TOKEN").String()
	creds := session.Credentials{
		ClientID:     auth.Key("CLIENT_ID").String(),
		ClientSecret: auth.Key("CLIENT_SECRET").String(),
		AuthMode:     authMode(auth.Key("CLIENT_TYPE").String()),
		TokenURL:     tokenURL,
		Platform:     platform.Guess(tokenURL),
	}
	return creds, checkRequired(creds)
}

// FromEnv builds credentials from ISOGEO_* environment variables. Any dotenv
// files given are loaded first; already-set variables keep their value.
func FromEnv(dotenvFiles ...string) (session.Credentials, error) {
	if len(dotenvFiles) > 0 {
		if err := godotenv.Load(dotenvFiles...); err != nil {
			return session.Credentials{}, errors.Wrap(err, "credentials: loading dotenv")
		}
	}

	creds := session.Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
		AuthMode:     authMode(os.Getenv(EnvAuthMode)),
		Username:     os.Getenv(EnvUserName),
		Password:     os.Getenv(EnvUserPassword),
		TokenURL:     os.Getenv(EnvTokenURL),
	}
	if p := os.Getenv(EnvPlatform); p != "" {
		creds.Platform = platform.Platform(strings.ToLower(p))
	} else if creds.TokenURL != "" {
		creds.Platform = platform.Guess(creds.TokenURL)
	}
	return creds, checkRequired(creds)
}

// authMode maps the loose mode spellings found in files and environments.
func authMode(raw string) session.AuthMode {
	switch strings.ToLower(raw) {
	case "user", "installed":
		return session.AuthModeUser
	default:
		return session.AuthModeGroup
	}
}

func checkRequired(creds session.Credentials) error {
	var missing []string
	if creds.ClientID == "" {
		missing = append(missing, "client ID")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return errors.Mark(
			errors.Newf("credentials: missing %s", strings.Join(missing, ", ")),
			ErrCredentialsFormat,
		)
	}
	return nil
}
