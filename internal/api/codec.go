// This file defines the body codecs: the request/response wire formats the
// content negotiator can select. Two families ship built in, JSON and XML;
// both apply to success values and to the aggregated error-list envelope.
package api

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Codec is a request/response body format handler.
type Codec interface {
	// ContentType returns the MIME type emitted with responses.
	ContentType() string
	// ParseBody decodes raw request-body bytes into a structured value.
	ParseBody(raw []byte) (any, error)
	// GenerateResponse serializes a success value or an error envelope.
	GenerateResponse(v any) ([]byte, error)
}

// JSONCodec serializes with encoding/json. It is the default codec unless a
// default-codec hook overrides it.
type JSONCodec struct{}

// ContentType returns the JSON MIME type.
func (JSONCodec) ContentType() string { return "application/json" }

// ParseBody decodes a JSON document into its generic Go value.
func (JSONCodec) ParseBody(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GenerateResponse marshals v as JSON.
func (JSONCodec) GenerateResponse(v any) ([]byte, error) {
	return json.Marshal(v)
}

// XMLCodec serializes with a deterministic element-per-key emitter: map keys
// become child elements (sorted for stable output), slices repeat their
// parent key, and scalars become text content. Values that are not already
// generic (maps, slices, scalars) are normalized through a JSON round trip
// first, so any JSON-taggable value has a well-defined XML shape without a
// schema.
type XMLCodec struct{}

// ContentType returns the XML MIME type.
func (XMLCodec) ContentType() string { return "application/xml" }

// ParseBody decodes a single-rooted XML document into nested string maps,
// keyed by the root element name. Repeated sibling elements accumulate into
// a slice.
func (XMLCodec) ParseBody(raw []byte) (any, error) {
	dec := xml.NewDecoder(strings.NewReader(string(raw)))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			content, err := parseElement(dec, start)
			if err != nil {
				return nil, err
			}
			return map[string]any{start.Name.Local: content}, nil
		}
	}
}

// GenerateResponse emits v as an XML document. An error envelope gets the
// <errors> root; everything else is wrapped in <response>.
func (x XMLCodec) GenerateResponse(v any) ([]byte, error) {
	root := "response"
	if el, ok := v.(ErrorList); ok {
		root = "errors"
		v = errorItems(el)
	}

	generic, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	if err := writeXML(&b, root, generic); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// errorItems reshapes an ErrorList so the XML document reads
// <errors><error><code/><message/></error>…</errors>.
func errorItems(l ErrorList) map[string]any {
	items := make([]any, len(l.Errors))
	for i, e := range l.Errors {
		items[i] = map[string]any{"code": e.Code, "message": e.Message}
	}
	return map[string]any{"error": items}
}

// toGeneric normalizes v into maps, slices, and scalars via encoding/json.
func toGeneric(v any) (any, error) {
	switch v.(type) {
	case map[string]any, []any, string, bool, nil,
		int, int64, float64, json.Number:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeXML(w io.Writer, name string, v any) error {
	switch val := v.(type) {
	case map[string]any:
		if _, err := fmt.Fprintf(w, "<%s>", name); err != nil {
			return err
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := writeXML(w, k, val[k]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "</%s>", name)
		return err
	case []any:
		// Repeated elements share the parent key.
		for _, item := range val {
			if err := writeXML(w, name, item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		_, err := fmt.Fprintf(w, "<%s/>", name)
		return err
	default:
		var text string
		switch s := val.(type) {
		case string:
			text = s
		case float64:
			// json.Unmarshal produces float64; keep integral values clean.
			if s == float64(int64(s)) {
				text = fmt.Sprintf("%d", int64(s))
			} else {
				text = fmt.Sprintf("%v", s)
			}
		default:
			text = fmt.Sprintf("%v", s)
		}
		var esc strings.Builder
		if err := xml.EscapeText(&esc, []byte(text)); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "<%s>%s</%s>", name, esc.String(), name)
		return err
	}
}

// parseElement consumes tokens until start's matching end element, building
// either a text scalar or a nested map of child elements.
func parseElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := map[string]any{}
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			name := t.Name.Local
			switch existing := children[name].(type) {
			case nil:
				children[name] = child
			case []any:
				children[name] = append(existing, child)
			default:
				children[name] = []any{existing, child}
			}
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) > 0 {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}
