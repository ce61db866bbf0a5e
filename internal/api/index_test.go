package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
)

// mixedRouteHooks registers one table with every index-relevant shape: a
// plain visible route, a multi-binding route that accepts a body, a route
// with a named capture, and a hidden route.
func mixedRouteHooks(family Family) *Hooks {
	hooks := NewHooks()
	hooks.RegisterRoutes(family, func(entries []RouteEntry) []RouteEntry {
		return append(entries,
			NewRoute("/things",
				Bind(noopHandler, Readable),
				Bind(noopHandler, Creatable|AcceptData),
			),
			NewRoute(`/things/(?P<id>\d+)`, Bind(noopHandler, Readable)),
			NewRoute("/internal/cache-flush", Bind(noopHandler, Readable|HiddenEndpoint)),
		)
	})
	return hooks
}

func TestGetIndex_RouteEnumeration(t *testing.T) {
	s := newTestServer(mixedRouteHooks(FamilyCurrent), allowAll)
	idx := s.getIndex(FamilyCurrent)
	routes := idx.Store.Routes

	if _, ok := routes["/internal/cache-flush"]; ok {
		t.Fatal("hidden route leaked into the index")
	}
	if len(routes) != 3 {
		t.Fatalf("routes = %v, want /, /things, /things/<id>", routes)
	}

	// Verbs and the accepts-data flag accumulate across an entry's bindings.
	things, ok := routes["/things"]
	if !ok {
		t.Fatalf("missing /things in %v", routes)
	}
	if want := []string{"HEAD", "GET", "POST"}; !reflect.DeepEqual(things.Supports, want) {
		t.Fatalf("supports = %v, want %v", things.Supports, want)
	}
	if !things.AcceptsData {
		t.Fatal("accepts_data not accumulated from the second binding")
	}
	if things.Meta == nil {
		t.Fatal("capture-free pattern lost its self link")
	}
	if want := "https://unit.example.com/api/v3/things"; things.Meta.Self != want {
		t.Fatalf("self = %q, want %q", things.Meta.Self, want)
	}

	// Captured patterns are keyed by their display form and carry no self
	// link, since the link cannot be resolved without a concrete id.
	byID, ok := routes["/things/<id>"]
	if !ok {
		t.Fatalf("missing display-form key in %v", routes)
	}
	if byID.Meta != nil {
		t.Fatalf("captured pattern grew a self link: %+v", byID.Meta)
	}
	if byID.AcceptsData {
		t.Fatal("accepts_data set on a read-only binding")
	}

	// The built-in index route describes itself with a trailing slash.
	root, ok := routes["/"]
	if !ok {
		t.Fatalf("missing builtin / in %v", routes)
	}
	if want := "https://unit.example.com/api/v3/"; root.Meta == nil || root.Meta.Self != want {
		t.Fatalf("root self = %+v, want %q", root.Meta, want)
	}
}

func TestGetIndex_LegacyFamilySelfLinks(t *testing.T) {
	s := newTestServer(mixedRouteHooks(FamilyLegacy), allowAll)
	routes := s.getIndex(FamilyLegacy).Store.Routes

	things, ok := routes["/things"]
	if !ok {
		t.Fatalf("missing /things in %v", routes)
	}
	// Legacy links carry no version marker segment.
	if want := "https://unit.example.com/api/things"; things.Meta.Self != want {
		t.Fatalf("self = %q, want %q", things.Meta.Self, want)
	}
}

func TestIndex_WireOutput(t *testing.T) {
	s := newTestServer(mixedRouteHooks(FamilyCurrent), allowAll)
	w := do(t, s, "GET", "http://s/api/v3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var payload struct {
		Store struct {
			Name   string `json:"name"`
			Routes map[string]struct {
				Supports    []string `json:"supports"`
				AcceptsData bool     `json:"accepts_data"`
				Meta        *struct {
					Self string `json:"self"`
				} `json:"meta"`
			} `json:"routes"`
		} `json:"store"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("index json: %v (%s)", err, w.Body.Bytes())
	}

	if payload.Store.Name != "Unit Store" {
		t.Fatalf("name = %q", payload.Store.Name)
	}
	if _, ok := payload.Store.Routes["/internal/cache-flush"]; ok {
		t.Fatal("hidden route present on the wire")
	}
	// The display rewrite is what clients see, not the raw regexp.
	if _, ok := payload.Store.Routes["/things/<id>"]; !ok {
		t.Fatalf("routes = %v, want the <id> display key", payload.Store.Routes)
	}
	for key := range payload.Store.Routes {
		if key == `/things/(?P<id>\d+)` {
			t.Fatal("raw pattern leaked onto the wire")
		}
	}
	if !payload.Store.Routes["/things"].AcceptsData {
		t.Fatal("accepts_data missing on the wire")
	}
}
