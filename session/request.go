package session

import (
	"net/http"
	"net/url"
)

// RequestOption customizes a single request issued through Session.Request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	query       url.Values
	header      http.Header
	body        []byte
	contentType string
	jsonBody    any
	hasJSON     bool
}

func newRequestOptions() *requestOptions {
	return &requestOptions{
		query:  url.Values{},
		header: http.Header{},
	}
}

// WithQuery merges the given values into the request query string.
func WithQuery(q url.Values) RequestOption {
	return func(ro *requestOptions) {
		for k, vs := range q {
			for _, v := range vs {
				ro.query.Add(k, v)
			}
		}
	}
}

// WithQueryParam adds one query parameter.
func WithQueryParam(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.query.Add(key, value)
	}
}

// WithHeader adds one request header.
func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.header.Add(key, value)
	}
}

// WithBody sets a raw request body. The body is buffered so bounded retries
// can replay it.
func WithBody(contentType string, body []byte) RequestOption {
	return func(ro *requestOptions) {
		ro.contentType = contentType
		ro.body = body
		ro.hasJSON = false
	}
}

// WithJSON marshals v as the request body with a JSON content type.
func WithJSON(v any) RequestOption {
	return func(ro *requestOptions) {
		ro.jsonBody = v
		ro.hasJSON = true
	}
}

// payload resolves the effective body and content type.
func (ro *requestOptions) payload() ([]byte, string, error) {
	if ro.hasJSON {
		body, err := json.Marshal(ro.jsonBody)
		if err != nil {
			return nil, "", err
		}
		return body, "application/json; charset=utf-8", nil
	}
	return ro.body, ro.contentType, nil
}
