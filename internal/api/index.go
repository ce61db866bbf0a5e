// This file implements the self-description endpoint: a read-only reflection
// over the route table plus the store metadata the profile carries. It is
// registered as the built-in "/" route of every handler family.
package api

import "strings"

// Index is the self-description wire entity.
type Index struct {
	Store StoreIndex `json:"store"`
}

// StoreIndex describes one store and its routable surface.
type StoreIndex struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	URL         string                `json:"URL"`
	Version     string                `json:"version"`
	APIVersion  string                `json:"api_version"`
	Meta        IndexMeta             `json:"meta"`
	Routes      map[string]RouteIndex `json:"routes"`
}

// IndexMeta carries the store's currency, tax, unit, and transport settings.
type IndexMeta struct {
	Timezone          string `json:"timezone"`
	Currency          string `json:"currency"`
	WeightUnit        string `json:"weight_unit"`
	DimensionUnit     string `json:"dimension_unit"`
	TaxIncluded       bool   `json:"tax_included"`
	SSLEnabled        bool   `json:"ssl_enabled"`
	PermalinksEnabled bool   `json:"permalinks_enabled"`
}

// RouteIndex describes one visible route: the verbs it supports, whether any
// binding accepts a request body, and a self link for capture-free patterns.
type RouteIndex struct {
	Supports    []string   `json:"supports"`
	AcceptsData bool       `json:"accepts_data,omitempty"`
	Meta        *RouteMeta `json:"meta,omitempty"`
}

// RouteMeta holds per-route links.
type RouteMeta struct {
	Self string `json:"self"`
}

// builtinRoutes returns the routes every family starts from: the index.
func (s *Server) builtinRoutes(family Family) []RouteEntry {
	return []RouteEntry{
		NewRoute("/", Bind(func([]any) (any, error) {
			return s.getIndex(family), nil
		}, MethodGet)),
	}
}

// getIndex enumerates the family's route table into the self-description
// entity. The table is rebuilt through the registration filters, so the
// index always reflects what dispatch would see.
//
// A route with any hidden binding is omitted entirely. Verb support and the
// accepts-data flag accumulate across an entry's bindings. Self links are
// emitted only for patterns without named captures, with capture groups in
// other patterns rewritten to their bare <name> form for display.
func (s *Server) getIndex(family Family) Index {
	entries := s.hooks.buildRoutes(family, s.builtinRoutes(family))

	routes := make(map[string]RouteIndex, len(entries))
	for _, e := range entries {
		if e.hidden() {
			continue
		}

		var mask Method
		for _, b := range e.Bindings {
			mask |= b.Mask
		}

		ri := RouteIndex{
			Supports:    supportedVerbs(mask),
			AcceptsData: mask.Has(AcceptData) || mask.Has(AcceptRawData),
		}
		if !e.hasCaptures() {
			ri.Meta = &RouteMeta{Self: s.selfLink(family, e.Pattern)}
		}
		routes[e.displayPattern()] = ri
	}

	return Index{Store: StoreIndex{
		Name:        s.profile.Name,
		Description: s.profile.Description,
		URL:         s.profile.URL,
		Version:     s.profile.StoreVersion,
		APIVersion:  s.profile.APIVersion,
		Meta: IndexMeta{
			Timezone:          s.profile.Timezone,
			Currency:          s.profile.Currency,
			WeightUnit:        s.profile.WeightUnit,
			DimensionUnit:     s.profile.DimensionUnit,
			TaxIncluded:       s.profile.TaxIncluded,
			SSLEnabled:        s.profile.SSLEnabled,
			PermalinksEnabled: s.profile.PermalinksEnabled,
		},
		Routes: routes,
	}}
}

// selfLink builds the absolute link for a capture-free route pattern.
func (s *Server) selfLink(family Family, pattern string) string {
	base := strings.TrimSuffix(s.profile.URL, "/") + s.basePath
	if family == FamilyCurrent {
		base += versionMarker
	}
	if pattern == "/" {
		return base + "/"
	}
	return base + pattern
}
