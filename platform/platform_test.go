package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPlatform(t *testing.T) {
	tests := []struct {
		name      string
		platform  Platform
		wantAPI   string
		wantTLS   bool
		expectErr bool
	}{
		{
			name:     "production",
			platform: Prod,
			wantAPI:  "https://v1.api.isogeo.com",
			wantTLS:  true,
		},
		{
			name:     "quality assurance",
			platform: QA,
			wantAPI:  "https://api.qa.isogeo.com",
			wantTLS:  false,
		},
		{
			name:     "integration",
			platform: Int,
			wantAPI:  "https://api.int.isogeo.com",
			wantTLS:  false,
		},
		{
			name:     "case insensitive",
			platform: Platform("PROD"),
			wantAPI:  "https://v1.api.isogeo.com",
			wantTLS:  true,
		},
		{
			name:      "unknown platform",
			platform:  Platform("staging"),
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep, err := ForPlatform(tt.platform)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAPI, ep.API)
			assert.Equal(t, tt.wantTLS, ep.VerifyTLS)
			assert.NotEmpty(t, ep.Token)
			assert.NotEmpty(t, ep.OpenCatalog)
		})
	}
}

func TestGuess(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://api.isogeo.com", Prod},
		{"https://v1.api.isogeo.com/resources/search", Prod},
		{"https://app.isogeo.com", Prod},
		{"https://api.qa.isogeo.com", QA},
		{"https://qa-isogeo-open.azurewebsites.net", QA},
		{"https://id.api.qa.isogeo.com/oauth/token", QA},
		{"https://api.int.isogeo.com", Int},
		{"https://int-isogeo-app.azurewebsites.net", Int},
		{"https://api.isogeo.ratp.local", Unknown},
		{"https://example.com", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Guess(tt.url))
		})
	}
}

func TestAPIBaseFromTokenURL(t *testing.T) {
	tests := []struct {
		name      string
		tokenURL  string
		want      string
		expectErr bool
	}{
		{
			name:     "production ID host maps to v1",
			tokenURL: "https://id.api.isogeo.com/oauth/token",
			want:     "https://v1.api.isogeo.com",
		},
		{
			name:     "qa host drops the id prefix",
			tokenURL: "https://id.api.qa.isogeo.com/oauth/token",
			want:     "https://api.qa.isogeo.com",
		},
		{
			name:     "integration host drops the id prefix",
			tokenURL: "https://id.api.int.isogeo.com/oauth/token",
			want:     "https://api.int.isogeo.com",
		},
		{
			name:      "no host",
			tokenURL:  "/oauth/token",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := APIBaseFromTokenURL(tt.tokenURL)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
