package webapps

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isogeo/isogeo-sdk-go/platform"
)

func TestViewURL_OpenCatalog(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	url, err := b.ViewURL("oc", map[string]string{
		"md_id":       "0269803d50c446b09f5060ef7fe3e22b",
		"share_id":    "1e07910d365449b59b6596a9b428ecd9",
		"share_token": "TokenOhDearToken",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"https://open.isogeo.com/s/1e07910d365449b59b6596a9b428ecd9/TokenOhDearToken/r/0269803d50c446b09f5060ef7fe3e22b",
		url)
}

func TestViewURL_OpenCatalogQA(t *testing.T) {
	b, err := NewBuilder(platform.QA)
	require.NoError(t, err)

	url, err := b.ViewURL("oc", map[string]string{
		"md_id":       "m",
		"share_id":    "s",
		"share_token": "t",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://qa-isogeo-open.azurewebsites.net/s/s/t/r/m", url)
}

func TestViewURL_CSW(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	tests := []struct {
		name   string
		app    string
		params map[string]string
		want   string
	}{
		{
			name:   "getcapabilities",
			app:    "csw_getcap",
			params: map[string]string{"share_id": "sid", "share_token": "tok"},
			want: "https://services.api.isogeo.com/ows/s/sid/tok?service=CSW" +
				"&version=2.0.2&request=GetCapabilities",
		},
		{
			name: "getrecordbyid",
			app:  "csw_getrec",
			params: map[string]string{
				"md_uuid_urn": "urn:isogeo:metadata:uuid:0269803d-50c4-46b0-9f50-60ef7fe3e22b",
				"share_id":    "sid",
				"share_token": "tok",
			},
			want: "https://services.api.isogeo.com/ows/s/sid/tok?service=CSW" +
				"&version=2.0.2&request=GetRecordById" +
				"&id=urn:isogeo:metadata:uuid:0269803d-50c4-46b0-9f50-60ef7fe3e22b" +
				"&elementsetname=full&outputSchema=http://www.isotc211.org/2005/gmd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, err := b.ViewURL(tt.app, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestViewURL_UnknownApp(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	_, err = b.ViewURL("geoportal", map[string]string{"md_id": "m"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownWebApp))
}

func TestViewURL_MissingArguments(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	_, err = b.ViewURL("oc", map[string]string{"md_id": "m"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownWebApp))
	assert.Contains(t, err.Error(), "share_id")
	assert.Contains(t, err.Error(), "share_token")
}

func TestRegister(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	err = b.Register("ppige", []string{"md_id"},
		"https://www.ppige-npdc.fr/portail/geocatalogue?uuid={md_id}")
	require.NoError(t, err)

	url, err := b.ViewURL("ppige", map[string]string{"md_id": "0269803d"})
	require.NoError(t, err)
	assert.Equal(t, "https://www.ppige-npdc.fr/portail/geocatalogue?uuid=0269803d", url)
}

func TestRegister_PlaceholderMissingFromTemplate(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	err = b.Register("broken", []string{"md_id"}, "https://example.org/?uuid=static")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{md_id}")
}

func TestRegister_OverwritesExisting(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	err = b.Register("oc", []string{"md_id"}, "https://my-own-oc.example.org/r/{md_id}")
	require.NoError(t, err)

	url, err := b.ViewURL("oc", map[string]string{"md_id": "m"})
	require.NoError(t, err)
	assert.Equal(t, "https://my-own-oc.example.org/r/m", url)
}

func TestApps(t *testing.T) {
	b, err := NewBuilder(platform.Prod)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"csw_getcap", "csw_getrec", "csw_getrecords", "oc", "pixup_portal"},
		b.Apps())
}
