package api

import (
	"reflect"
	"strings"
	"testing"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	c := JSONCodec{}
	if c.ContentType() != "application/json" {
		t.Fatalf("content type = %s", c.ContentType())
	}

	out, err := c.GenerateResponse(map[string]any{"store": map[string]any{"name": "x"}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != `{"store":{"name":"x"}}` {
		t.Fatalf("json = %s", out)
	}

	v, err := c.ParseBody([]byte(`{"a":[1,2]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m := v.(map[string]any)
	if !reflect.DeepEqual(m["a"], []any{float64(1), float64(2)}) {
		t.Fatalf("parsed = %#v", v)
	}

	if _, err := c.ParseBody([]byte("{nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestJSONCodec_ErrorEnvelope(t *testing.T) {
	out, err := JSONCodec{}.GenerateResponse(ErrorList{Errors: []*Error{
		NewError(ErrCodeNoRoute, "no route was found matching the URL and request method", 404),
	}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := `{"errors":[{"code":"no_route","message":"no route was found matching the URL and request method"}]}`
	if string(out) != want {
		t.Fatalf("json = %s", out)
	}
}

func TestXMLCodec_GenerateResponse(t *testing.T) {
	c := XMLCodec{}
	if c.ContentType() != "application/xml" {
		t.Fatalf("content type = %s", c.ContentType())
	}

	out, err := c.GenerateResponse(map[string]any{
		"zulu":  "last",
		"alpha": 1,
		"items": []any{"a", "b"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	body := string(out)
	// Keys are emitted sorted; slices repeat the parent element.
	want := "<response><alpha>1</alpha><items>a</items><items>b</items><zulu>last</zulu></response>"
	if !strings.HasSuffix(body, want) {
		t.Fatalf("xml = %s", body)
	}
	if !strings.HasPrefix(body, "<?xml") {
		t.Fatalf("missing xml header: %s", body)
	}
}

func TestXMLCodec_StructsNormalizeThroughJSON(t *testing.T) {
	type wire struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	out, err := XMLCodec{}.GenerateResponse(wire{Name: "x", Count: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "<count>2</count><name>x</name>") {
		t.Fatalf("xml = %s", out)
	}
}

func TestXMLCodec_EscapesText(t *testing.T) {
	out, err := XMLCodec{}.GenerateResponse(map[string]any{"v": `a<b&"c"`})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Contains(string(out), "a<b") {
		t.Fatalf("unescaped text in %s", out)
	}
	if !strings.Contains(string(out), "a&lt;b&amp;") {
		t.Fatalf("expected escaped text, got %s", out)
	}
}

func TestXMLCodec_ErrorEnvelopeShape(t *testing.T) {
	out, err := XMLCodec{}.GenerateResponse(ErrorList{Errors: []*Error{
		NewError("one", "first", 400),
		NewError("two", "second", 400),
	}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "<errors>" +
		"<error><code>one</code><message>first</message></error>" +
		"<error><code>two</code><message>second</message></error>" +
		"</errors>"
	if !strings.HasSuffix(string(out), want) {
		t.Fatalf("xml = %s", out)
	}
}

func TestXMLCodec_ParseBody(t *testing.T) {
	v, err := XMLCodec{}.ParseBody([]byte(
		"<order><id>7</id><line><sku>a</sku></line><line><sku>b</sku></line></order>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	root := v.(map[string]any)
	order, ok := root["order"].(map[string]any)
	if !ok {
		t.Fatalf("parsed = %#v", v)
	}
	if order["id"] != "7" {
		t.Fatalf("id = %v", order["id"])
	}
	// Repeated siblings accumulate into a slice.
	lines, ok := order["line"].([]any)
	if !ok || len(lines) != 2 {
		t.Fatalf("lines = %#v", order["line"])
	}
	if lines[0].(map[string]any)["sku"] != "a" || lines[1].(map[string]any)["sku"] != "b" {
		t.Fatalf("lines = %#v", lines)
	}

	// Scalar root.
	v, err = XMLCodec{}.ParseBody([]byte("<note> hello </note>"))
	if err != nil {
		t.Fatalf("parse scalar: %v", err)
	}
	if v.(map[string]any)["note"] != "hello" {
		t.Fatalf("scalar = %#v", v)
	}

	if _, err := (XMLCodec{}).ParseBody([]byte("<broken>")); err == nil {
		t.Fatalf("expected parse error for unterminated document")
	}
}
