// Package webapps builds view URLs pointing at the web applications that can
// display an Isogeo metadata record: the OpenCatalog, CSW endpoints and
// registered third-party portals.
//
// A Builder starts with the stock applications for one platform and accepts
// new registrations at runtime, so an integrator can point at an on-premises
// portal with a one-line Register call.
package webapps

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/isogeo/isogeo-sdk-go/platform"
)

// ErrUnknownWebApp reports a view-URL request for an unregistered application.
var ErrUnknownWebApp = errors.New("webapps: unknown web application")

// App describes one registered web application.
type App struct {
	// Args lists the placeholder names the template expects.
	Args []string
	// Template is the URL with {arg} placeholders.
	Template string
}

// Builder maps web-application names to URL templates.
type Builder struct {
	mu   sync.RWMutex
	apps map[string]App
}

// NewBuilder returns a builder pre-loaded with the stock Isogeo applications
// of the given platform.
func NewBuilder(p platform.Platform) (*Builder, error) {
	ep, err := platform.ForPlatform(p)
	if err != nil {
		return nil, err
	}
	return NewBuilderWithEndpoints(ep), nil
}

// NewBuilderWithEndpoints is like NewBuilder but takes explicit endpoints,
// for on-premises deployments.
func NewBuilderWithEndpoints(ep platform.Endpoints) *Builder {
	b := &Builder{apps: make(map[string]App)}

	csw := strings.TrimSuffix(ep.CSW, "/")
	oc := strings.TrimSuffix(ep.OpenCatalog, "/")

	stock := map[string]App{
		"oc": {
			Args:     []string{"md_id", "share_id", "share_token"},
			Template: oc + "/s/{share_id}/{share_token}/r/{md_id}",
		},
		"csw_getcap": {
			Args: []string{"share_id", "share_token"},
			Template: csw + "/ows/s/{share_id}/{share_token}?service=CSW" +
				"&version=2.0.2&request=GetCapabilities",
		},
		"csw_getrec": {
			Args: []string{"md_uuid_urn", "share_id", "share_token"},
			Template: csw + "/ows/s/{share_id}/{share_token}?service=CSW" +
				"&version=2.0.2&request=GetRecordById" +
				"&id={md_uuid_urn}&elementsetname=full" +
				"&outputSchema=http://www.isotc211.org/2005/gmd",
		},
		"csw_getrecords": {
			Args: []string{"share_id", "share_token"},
			Template: csw + "/ows/s/{share_id}/{share_token}?service=CSW" +
				"&version=2.0.2&request=GetRecords&ResultType=results" +
				"&ElementSetName=brief&maxRecords=20" +
				"&OutputFormat=application/xml" +
				"&OutputSchema=http://www.opengis.net/cat/csw/2.0.2" +
				"&namespace=xmlns(csw=http://www.opengis.net/cat/csw/2.0.2)" +
				"&TypeNames=csw:Record&startPosition=1",
		},
		"pixup_portal": {
			Args:     []string{"md_id", "portal_url"},
			Template: "http://{portal_url}/?muid={md_id}",
		},
	}
	for name, app := range stock {
		b.apps[name] = app
	}
	return b
}

// Register adds a web application to the builder, overwriting any previous
// registration under the same name. Every declared argument must occur as a
// {placeholder} in the template.
func (b *Builder) Register(name string, args []string, template string) error {
	if name == "" {
		return errors.New("webapps: application name must not be empty")
	}
	for _, arg := range args {
		if !strings.Contains(template, "{"+arg+"}") {
			return errors.Newf("webapps: template for %q misses the {%s} placeholder", name, arg)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.apps[name] = App{Args: append([]string(nil), args...), Template: template}
	return nil
}

// Apps returns the registered application names, sorted.
func (b *Builder) Apps() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.apps))
	for name := range b.apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ViewURL builds the view URL of a metadata record in the named application.
// params must provide a value for every argument the application declares;
// extra keys are ignored.
func (b *Builder) ViewURL(name string, params map[string]string) (string, error) {
	b.mu.RLock()
	app, ok := b.apps[name]
	b.mu.RUnlock()
	if !ok {
		return "", errors.Mark(
			errors.Newf("webapps: %q is not registered (known: %s)", name, strings.Join(b.Apps(), ", ")),
			ErrUnknownWebApp,
		)
	}

	var missing []string
	url := app.Template
	for _, arg := range app.Args {
		value, ok := params[arg]
		if !ok || value == "" {
			missing = append(missing, arg)
			continue
		}
		url = strings.ReplaceAll(url, "{"+arg+"}", value)
	}
	if len(missing) > 0 {
		return "", errors.Newf("webapps: %q expects arguments %s, missing %s",
			name, strings.Join(app.Args, ", "), strings.Join(missing, ", "))
	}
	return url, nil
}
