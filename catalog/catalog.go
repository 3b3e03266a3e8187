// Package catalog provides typed access to the Isogeo catalog resources:
// metadata search and retrieval, shares, thesauri and keywords, licenses and
// the platform reference lists.
//
// A Client wraps an authenticated session.Session; every call ensures a valid
// bearer token before hitting the API.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/isogeo/isogeo-sdk-go/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// pageSize is the page length used when stitching a whole result set. The API
// caps pages at 100 results.
const pageSize = 100

// Client issues catalog requests through an authenticated session.
type Client struct {
	session *session.Session
	lang    string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLang sets the language of localized API responses. Defaults to "fr",
// matching the vendor tooling.
func WithLang(lang string) ClientOption {
	return func(c *Client) { c.lang = lang }
}

// NewClient wraps a session.
func NewClient(s *session.Session, opts ...ClientOption) *Client {
	c := &Client{session: s, lang: "fr"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GeoRelation is the geometric operator applied to the BBox or Polygon search
// criteria. The API defaults to intersects when unset.
type GeoRelation string

// Geometric operators accepted by the search endpoint.
const (
	GeoContains   GeoRelation = "contains"
	GeoDisjoint   GeoRelation = "disjoint"
	GeoEquals     GeoRelation = "equal"
	GeoIntersects GeoRelation = "intersects"
	GeoOverlaps   GeoRelation = "overlaps"
	GeoWithin     GeoRelation = "within"
)

// SearchOptions narrows a metadata search. The zero value searches everything
// shared to the application, one page at a time.
type SearchOptions struct {
	// Query holds search terms and semantic filters, e.g. "oil" or
	// "keyword:isogeo:formations". Multiple tags are ANDed by the API.
	Query string

	// BBox limits the search to a WGS84 bounding box [minx miny maxx maxy].
	BBox []float64
	// Polygon limits the search to a WKT geometry.
	Polygon string
	// GeoRelation is the operator applied to BBox or Polygon.
	GeoRelation GeoRelation

	// OrderBy is one of _created, _modified, title, created, modified,
	// relevance. OrderDir is asc or desc.
	OrderBy  string
	OrderDir string

	// Limit and Offset paginate results. Limit defaults to the API page cap.
	Limit  int
	Offset int

	// ShareID filters on one share.
	ShareID string
	// SpecificIDs filters on the given metadata UUIDs.
	SpecificIDs []string
	// Include lists subresources to embed in the results.
	Include []string

	// WholeResults requests every page of the result set, stitched into one
	// response. Offset and Limit are ignored past the first page.
	WholeResults bool
}

func (o SearchOptions) values(lang string) (url.Values, error) {
	q := url.Values{}
	q.Set("_lang", lang)

	limit := o.Limit
	if limit <= 0 {
		limit = pageSize
	}
	q.Set("_limit", strconv.Itoa(limit))
	q.Set("_offset", strconv.Itoa(o.Offset))

	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if len(o.BBox) > 0 {
		if len(o.BBox) != 4 {
			return nil, errors.Newf("catalog: bbox expects 4 coordinates, got %d", len(o.BBox))
		}
		coords := make([]string, 4)
		for i, c := range o.BBox {
			coords[i] = strconv.FormatFloat(c, 'f', -1, 64)
		}
		q.Set("box", strings.Join(coords, ","))
	}
	if o.Polygon != "" {
		q.Set("geo", o.Polygon)
	}
	if o.GeoRelation != "" {
		q.Set("rel", string(o.GeoRelation))
	}
	if o.OrderBy != "" {
		q.Set("ob", o.OrderBy)
	}
	if o.OrderDir != "" {
		q.Set("od", o.OrderDir)
	}
	if o.ShareID != "" {
		q.Set("s", o.ShareID)
	}
	if len(o.SpecificIDs) > 0 {
		q.Set("_id", strings.Join(o.SpecificIDs, ","))
	}
	if len(o.Include) > 0 {
		q.Set("_include", strings.Join(o.Include, ","))
	}
	return q, nil
}

// Search queries the resources shared to the application. With
// opts.WholeResults set, every page is fetched and the results stitched into
// a single response.
func (c *Client) Search(ctx context.Context, opts SearchOptions) (*SearchResults, error) {
	q, err := opts.values(c.lang)
	if err != nil {
		return nil, err
	}

	var page SearchResults
	if err := c.get(ctx, "/resources/search", q, &page); err != nil {
		return nil, err
	}

	if !opts.WholeResults || page.Total <= len(page.Results) {
		return &page, nil
	}

	// More than one page: re-walk the result set in pages of 100.
	all := make([]Metadata, 0, page.Total)
	all = append(all, page.Results...)
	q.Set("_limit", strconv.Itoa(pageSize))

	for offset := len(page.Results); offset < page.Total; offset += pageSize {
		q.Set("_offset", strconv.Itoa(offset))

		var next SearchResults
		if err := c.get(ctx, "/resources/search", q, &next); err != nil {
			return nil, err
		}
		if len(next.Results) == 0 {
			break
		}
		all = append(all, next.Results...)
	}
	page.Results = all
	return &page, nil
}

// Resource fetches one metadata record, embedding the given subresources.
func (c *Client) Resource(ctx context.Context, id string, include ...string) (*Metadata, error) {
	q := url.Values{}
	if len(include) > 0 {
		q.Set("_include", strings.Join(include, ","))
	}

	var md Metadata
	if err := c.get(ctx, "/resources/"+id, q, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// Shares lists the shares feeding the application.
func (c *Client) Shares(ctx context.Context) ([]Share, error) {
	var shares []Share
	if err := c.get(ctx, "/shares/", nil, &shares); err != nil {
		return nil, err
	}
	return shares, nil
}

// Share fetches one share and its applications.
func (c *Client) Share(ctx context.Context, id string) (*Share, error) {
	var share Share
	if err := c.get(ctx, "/shares/"+id, nil, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// Thesauri lists the available thesauri.
func (c *Client) Thesauri(ctx context.Context) ([]Thesaurus, error) {
	var thesauri []Thesaurus
	if err := c.get(ctx, "/thesauri", nil, &thesauri); err != nil {
		return nil, err
	}
	return thesauri, nil
}

// Thesaurus fetches one thesaurus.
func (c *Client) Thesaurus(ctx context.Context, id string) (*Thesaurus, error) {
	var thesaurus Thesaurus
	if err := c.get(ctx, "/thesauri/"+id, nil, &thesaurus); err != nil {
		return nil, err
	}
	return &thesaurus, nil
}

// KeywordOptions narrows a keyword search within a thesaurus.
type KeywordOptions struct {
	Query    string
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
	Include  []string
}

// Keywords searches for keywords within a thesaurus.
func (c *Client) Keywords(ctx context.Context, thesaurusID string, opts KeywordOptions) (*KeywordResults, error) {
	q := url.Values{}
	q.Set("tid", thesaurusID)

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	q.Set("_limit", strconv.Itoa(limit))
	q.Set("_offset", strconv.Itoa(opts.Offset))
	if opts.Query != "" {
		q.Set("q", opts.Query)
	}
	if opts.OrderBy != "" {
		q.Set("ob", opts.OrderBy)
	}
	if opts.OrderDir != "" {
		q.Set("od", opts.OrderDir)
	}
	if len(opts.Include) > 0 {
		q.Set("_include", strings.Join(opts.Include, ","))
	}

	var results KeywordResults
	path := fmt.Sprintf("/thesauri/%s/keywords/search", thesaurusID)
	if err := c.get(ctx, path, q, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// Licenses lists the licenses owned by a workgroup.
func (c *Client) Licenses(ctx context.Context, workgroupID string) ([]License, error) {
	q := url.Values{}
	q.Set("gid", workgroupID)

	var licenses []License
	path := fmt.Sprintf("/groups/%s/licenses", workgroupID)
	if err := c.get(ctx, path, q, &licenses); err != nil {
		return nil, err
	}
	return licenses, nil
}

// License fetches one license.
func (c *Client) License(ctx context.Context, id string) (*License, error) {
	var license License
	if err := c.get(ctx, "/licenses/"+id, nil, &license); err != nil {
		return nil, err
	}
	return &license, nil
}

// LinkKinds lists the available link kinds and their actions.
func (c *Client) LinkKinds(ctx context.Context) ([]LinkKind, error) {
	var kinds []LinkKind
	if err := c.get(ctx, "/link-kinds", nil, &kinds); err != nil {
		return nil, err
	}
	return kinds, nil
}

// Directives lists the INSPIRE environment directives.
func (c *Client) Directives(ctx context.Context) ([]Directive, error) {
	var directives []Directive
	if err := c.get(ctx, "/directives", nil, &directives); err != nil {
		return nil, err
	}
	return directives, nil
}

// CoordinateSystems lists the coordinate systems known to the platform, or
// fetches a single one when code is non-empty.
func (c *Client) CoordinateSystems(ctx context.Context, code string) ([]CoordinateSystem, error) {
	path := "/coordinate-systems"
	if code != "" {
		var srs CoordinateSystem
		if err := c.get(ctx, path+"/"+code, nil, &srs); err != nil {
			return nil, err
		}
		return []CoordinateSystem{srs}, nil
	}

	var systems []CoordinateSystem
	if err := c.get(ctx, path, nil, &systems); err != nil {
		return nil, err
	}
	return systems, nil
}

// Formats lists the data formats known to the platform, or fetches a single
// one when code is non-empty.
func (c *Client) Formats(ctx context.Context, code string) ([]Format, error) {
	path := "/formats"
	if code != "" {
		var format Format
		if err := c.get(ctx, path+"/"+code, nil, &format); err != nil {
			return nil, err
		}
		return []Format{format}, nil
	}

	var formats []Format
	if err := c.get(ctx, path, nil, &formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// get issues an authenticated GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	var opts []session.RequestOption
	if len(q) > 0 {
		opts = append(opts, session.WithQuery(q))
	}

	resp, err := c.session.Request(ctx, http.MethodGet, path, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := session.CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrapf(err, "catalog: decoding %s response", path)
	}
	return nil
}
