// This file defines the engine's request abstraction: an immutable snapshot
// of one inbound HTTP request, taken once at the start of dispatch.
//
// Design notes:
//   - The raw body is read exactly once (bounded by a byte cap) and memoized,
//     so body-form parsing and the raw-data injection see the same bytes.
//   - Header keys are normalized to the CGI-style shape the wire format
//     implies (upper-case, "-" replaced with "_", a proxy-added "HTTP_"
//     prefix stripped), so handlers can look them up without guessing case.
//   - A _method query parameter substitutes the effective verb before
//     classification, for clients that cannot issue non-GET verbs natively.
//     The original verb is retained so HEAD responses can stay body-less.
package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxBody caps how many bytes of the request body are read and
// memoized. Mirrors the host transport's global body limit.
const DefaultMaxBody = 1 << 20 // 1 MiB

// Request is an immutable view of one inbound request, constructed at the
// start of request handling and discarded after response assembly. Only the
// acting principal is set after construction, by the authentication gate.
type Request struct {
	// Verb is the effective HTTP verb after any _method substitution.
	Verb string

	// Path is the URL-decoded request path below the API base path, with any
	// recognized format suffix (".json" / ".xml") stripped. Route patterns
	// match against this value.
	Path string

	// FullPath is Path before suffix stripping; the content negotiator
	// inspects it for the format suffix.
	FullPath string

	// Query and Body hold the query-string and posted form parameters.
	Query url.Values
	Body  url.Values

	// Headers holds case-normalized request headers (CGI shape).
	Headers map[string]string

	// Files holds uploaded multipart files by field name.
	Files map[string][]*multipart.FileHeader

	// URL is the original request URL, used by the pagination header builder
	// to derive page-rewritten links.
	URL *url.URL

	// Principal is the authenticated identity, set by the authentication
	// gate before dispatch. Nil until then.
	Principal any

	origVerb string
	raw      []byte
}

// NewRequest snapshots r into an engine Request. basePath is trimmed from the
// front of the path; maxBody bounds the memoized raw body (values <= 0 use
// DefaultMaxBody).
//
// The body is consumed here: form parameters and the RawBody accessor both
// operate on the memoized copy, so repeat reads observe identical bytes.
func NewRequest(r *http.Request, basePath string, maxBody int64) (*Request, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	raw, err := readBody(r, maxBody)
	if err != nil {
		return nil, err
	}

	path := trimBasePath(r.URL.Path, basePath)
	full := path
	path = stripFormatSuffix(path)

	query := r.URL.Query()
	verb := r.Method
	if override := query.Get("_method"); override != "" {
		verb = strings.ToUpper(override)
	}

	body, files := parseBodyParams(r, raw)

	return &Request{
		Verb:     verb,
		Path:     path,
		FullPath: full,
		Query:    query,
		Body:     body,
		Headers:  normalizeHeaders(r.Header),
		Files:    files,
		URL:      r.URL,
		origVerb: r.Method,
		raw:      raw,
	}, nil
}

// RawBody returns the memoized request body bytes.
func (r *Request) RawBody() []byte { return r.raw }

// IsHead reports whether the original verb (before any _method substitution)
// was HEAD. HEAD requests never emit a response body.
func (r *Request) IsHead() bool { return strings.EqualFold(r.origVerb, http.MethodHead) }

// Header returns the normalized header value for a wire header name, e.g.
// Header("Accept") looks up "ACCEPT".
func (r *Request) Header(name string) string {
	return r.Headers[normalizeHeaderKey(name)]
}

func readBody(r *http.Request, maxBody int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, err
	}
	// Restore the body so stdlib form parsing can consume the same bytes.
	r.Body = io.NopCloser(bytes.NewReader(raw))
	return raw, nil
}

// parseBodyParams extracts posted form values and uploaded files. Parse
// failures yield empty maps rather than an error: a non-form body is simply
// not form data, and handlers that want it ask for raw or decoded data
// through their capability mask.
func parseBodyParams(r *http.Request, raw []byte) (url.Values, map[string][]*multipart.FileHeader) {
	body := url.Values{}
	files := map[string][]*multipart.FileHeader{}

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(int64(len(raw)) + 1); err == nil && r.MultipartForm != nil {
			for k, vs := range r.MultipartForm.Value {
				body[k] = vs
			}
			for k, fs := range r.MultipartForm.File {
				files[k] = fs
			}
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if vals, err := url.ParseQuery(string(raw)); err == nil {
			body = vals
		}
	}
	return body, files
}

// trimBasePath removes the mount prefix, leaving a leading-slash path. The
// prefix only counts on a segment boundary, so base "/api" leaves "/apifoo"
// alone.
func trimBasePath(path, base string) string {
	base = strings.TrimSuffix(base, "/")
	if base != "" {
		switch {
		case path == base:
			path = ""
		case strings.HasPrefix(path, base+"/"):
			path = strings.TrimPrefix(path, base)
		}
	}
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	return path
}

// stripFormatSuffix removes a trailing ".json" or ".xml" format marker so
// route patterns see the bare resource path.
func stripFormatSuffix(path string) string {
	for _, suffix := range []string{".json", ".xml"} {
		if strings.HasSuffix(path, suffix) {
			return strings.TrimSuffix(path, suffix)
		}
	}
	return path
}

func normalizeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		out[normalizeHeaderKey(k)] = strings.Join(vv, ", ")
	}
	return out
}

func normalizeHeaderKey(k string) string {
	k = strings.ToUpper(strings.ReplaceAll(k, "-", "_"))
	return strings.TrimPrefix(k, "HTTP_")
}
