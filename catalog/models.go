package catalog

// Metadata is one resource of the catalog. Only the envelope fields every
// record carries are typed; subresources requested with _include land in the
// same struct when present.
type Metadata struct {
	ID       string   `json:"_id"`
	Created  string   `json:"_created,omitempty"`
	Modified string   `json:"_modified,omitempty"`
	Type     string   `json:"type,omitempty"`
	Title    string   `json:"title,omitempty"`
	Name     string   `json:"name,omitempty"`
	Abstract string   `json:"abstract,omitempty"`
	Language string   `json:"language,omitempty"`
	Format   string   `json:"format,omitempty"`
	Path     string   `json:"path,omitempty"`
	Series   bool     `json:"series,omitempty"`
	Tags     Tags      `json:"tags,omitempty"`
	Keywords []Keyword `json:"keywords,omitempty"`
	Links    []Link    `json:"links,omitempty"`
}

// Tags maps tag identifiers ("keyword:isogeo:...", "owner:...") to labels.
type Tags map[string]string

// Link is one linked resource of a metadata record. Hosted links point at
// files stored on the Isogeo platform and can be downloaded through the API.
type Link struct {
	ID      string   `json:"_id"`
	Type    string   `json:"type"`
	Kind    string   `json:"kind,omitempty"`
	Title   string   `json:"title,omitempty"`
	URL     string   `json:"url,omitempty"`
	Actions []string `json:"actions,omitempty"`
	Size    int64    `json:"size,omitempty"`
}

// SearchResults is the envelope of a resources/search response.
type SearchResults struct {
	Total   int            `json:"total"`
	Offset  int            `json:"offset"`
	Limit   int            `json:"limit"`
	Results []Metadata     `json:"results"`
	Tags    Tags           `json:"tags,omitempty"`
	Query   map[string]any `json:"query,omitempty"`
}

// Share describes one share feeding the application.
type Share struct {
	ID           string        `json:"_id"`
	Created      string        `json:"_created,omitempty"`
	Modified     string        `json:"_modified,omitempty"`
	Name         string        `json:"name,omitempty"`
	Type         string        `json:"type,omitempty"`
	URLToken     string        `json:"urlToken,omitempty"`
	Applications []Application `json:"applications,omitempty"`
	Creator      *Workgroup    `json:"_creator,omitempty"`
}

// Application is a client application attached to a share.
type Application struct {
	ID       string `json:"_id"`
	Created  string `json:"_created,omitempty"`
	Modified string `json:"_modified,omitempty"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Kind     string `json:"kind,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Workgroup owns metadata, licenses and shares.
type Workgroup struct {
	ID      string         `json:"_id"`
	Contact map[string]any `json:"contact,omitempty"`
}

// Thesaurus is a controlled keyword vocabulary.
type Thesaurus struct {
	ID   string `json:"_id"`
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Keyword is one entry of a thesaurus.
type Keyword struct {
	ID        string         `json:"_id"`
	Text      string         `json:"text,omitempty"`
	Code      string         `json:"code,omitempty"`
	Thesaurus *Thesaurus     `json:"thesaurus,omitempty"`
	Count     map[string]int `json:"count,omitempty"`
}

// KeywordResults is the envelope of a keywords/search response.
type KeywordResults struct {
	Total   int       `json:"total"`
	Offset  int       `json:"offset"`
	Limit   int       `json:"limit"`
	Results []Keyword `json:"results"`
}

// License is a data license owned by a workgroup.
type License struct {
	ID      string `json:"_id"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content,omitempty"`
	Link    string `json:"link,omitempty"`
}

// LinkKind maps a link kind to the actions the API supports on it.
type LinkKind struct {
	Kind    string   `json:"kind"`
	Actions []string `json:"actions,omitempty"`
}

// Directive is an INSPIRE environment directive.
type Directive struct {
	ID          string `json:"_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// CoordinateSystem is one SRS known to the platform.
type CoordinateSystem struct {
	Code  int    `json:"code"`
	Alias string `json:"alias,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Format is a data format known to the platform.
type Format struct {
	Code     string   `json:"code"`
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	Versions []string `json:"versions,omitempty"`
}
