package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isogeo/isogeo-sdk-go/platform"
	"github.com/isogeo/isogeo-sdk-go/session"
)

const groupSecretsJSON = `{
  "web": {
    "client_id": "python-minimalist-sdk-test-uuid",
    "client_secret": "application-secret",
    "auth_uri": "https://id.api.isogeo.com/oauth/authorize",
    "token_uri": "https://id.api.isogeo.com/oauth/token",
    "scopes": ["resources:read"]
  }
}`

const userSecretsJSON = `{
  "installed": {
    "client_id": "user-app-uuid",
    "client_secret": "user-app-secret",
    "auth_uri": "https://id.api.qa.isogeo.com/oauth/authorize",
    "token_uri": "https://id.api.qa.isogeo.com/oauth/token"
  }
}`

const legacyINI = `[auth]
CLIENT_ID = ini-client-uuid
CLIENT_SECRET = ini-client-secret
CLIENT_TYPE = group
URI_AUTH = https://id.api.isogeo.com/oauth/authorize
URI_TOKEN = https://id.api.isogeo.com/oauth/token
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONGroup(t *testing.T) {
	path := writeTempFile(t, "client_secrets.json", groupSecretsJSON)

	creds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "python-minimalist-sdk-test-uuid", creds.ClientID)
	assert.Equal(t, "application-secret", creds.ClientSecret)
	assert.Equal(t, session.AuthModeGroup, creds.AuthMode)
	assert.Equal(t, platform.Prod, creds.Platform)
	assert.Equal(t, "https://id.api.isogeo.com/oauth/token", creds.TokenURL)
	assert.Equal(t, []string{"resources:read"}, creds.Scopes)
}

func TestLoad_JSONUser(t *testing.T) {
	path := writeTempFile(t, "client_secrets.json", userSecretsJSON)

	creds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, session.AuthModeUser, creds.AuthMode)
	assert.Equal(t, platform.QA, creds.Platform)
	// former exports carry no scopes, the classic one is assumed
	assert.Equal(t, []string{"resources:read"}, creds.Scopes)
}

func TestLoad_INI(t *testing.T) {
	path := writeTempFile(t, "isogeo_params.ini", legacyINI)

	creds, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ini-client-uuid", creds.ClientID)
	assert.Equal(t, "ini-client-secret", creds.ClientSecret)
	assert.Equal(t, session.AuthModeGroup, creds.AuthMode)
	assert.Equal(t, platform.Prod, creds.Platform)
}

func TestLoad_BadExtension(t *testing.T) {
	path := writeTempFile(t, "client_secrets.yaml", "web:")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCredentialsFormat))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"wrong top-level key", `{"desktop": {"client_id": "x"}}`},
		{"missing secret", `{"web": {"client_id": "x", "token_uri": "https://id.api.isogeo.com/oauth/token"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCredentialsFormat))
		})
	}
}

func TestParseINI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong section", "[credentials]\nCLIENT_ID = x\n"},
		{"missing keys", "[auth]\nCLIENT_ID = x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseINI([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCredentialsFormat))
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "env-client-uuid")
	t.Setenv(EnvClientSecret, "env-client-secret")
	t.Setenv(EnvAuthMode, "user")
	t.Setenv(EnvPlatform, "qa")
	t.Setenv(EnvUserName, "user@example.org")
	t.Setenv(EnvUserPassword, "hunter2")

	creds, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-client-uuid", creds.ClientID)
	assert.Equal(t, session.AuthModeUser, creds.AuthMode)
	assert.Equal(t, platform.QA, creds.Platform)
	assert.Equal(t, "user@example.org", creds.Username)
	require.NoError(t, creds.Validate())
}

func TestFromEnv_Dotenv(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	os.Unsetenv(EnvClientID)
	os.Unsetenv(EnvClientSecret)

	path := writeTempFile(t, ".env",
		"ISOGEO_API_CLIENT_ID=dotenv-client\nISOGEO_API_CLIENT_SECRET=dotenv-secret\n")

	creds, err := FromEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-client", creds.ClientID)
	assert.Equal(t, "dotenv-secret", creds.ClientSecret)
}

func TestFromEnv_MissingKeys(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	os.Unsetenv(EnvClientID)
	os.Unsetenv(EnvClientSecret)

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCredentialsFormat))
}
