// This file defines the engine's extension points: explicit, ordered lists of
// registered functions invoked at named pipeline stages. External
// collaborators contribute routes, rewrite or veto dispatch arguments,
// override the default codec, and may claim full responsibility for emitting
// a response.
package api

import "net/http"

// RouteFilter contributes to or rewrites the route table for one handler
// family. Filters run in registration order, each receiving the table the
// previous one produced; the built-in index route is already present.
type RouteFilter func(entries []RouteEntry) []RouteEntry

// ArgFilter may rewrite the fully assembled dispatch argument set just before
// binding, or veto dispatch altogether by returning an error.
type ArgFilter func(req *Request, args map[string]any) (map[string]any, error)

// ServeFilter may claim full responsibility for emitting the response. It
// runs after status and content-type headers are set; returning true
// suppresses the engine's own body serialization.
type ServeFilter func(w http.ResponseWriter, req *Request, result any) bool

// CodecFilter chooses the default body codec when neither the path suffix
// nor the Accept header decided one.
type CodecFilter func(req *Request) Codec

// Authenticator is the pluggable authentication collaborator. It returns the
// acting identity, nil (which the gate converts into authentication_error,
// since an authenticator is not allowed to silently have no opinion), or an
// explicit error that propagates unchanged.
type Authenticator func(req *Request) (any, error)

// Hooks holds the ordered extension-point registrations for one Server.
// Register everything before the Server starts taking requests; the engine
// reads hooks without locking during dispatch.
type Hooks struct {
	routeFilters map[Family][]RouteFilter
	argFilters   []ArgFilter
	serveFilters []ServeFilter
	codecFilter  CodecFilter
}

// NewHooks returns an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{routeFilters: map[Family][]RouteFilter{}}
}

// RegisterRoutes appends a route filter for the given handler family.
func (h *Hooks) RegisterRoutes(family Family, f RouteFilter) {
	h.routeFilters[family] = append(h.routeFilters[family], f)
}

// RegisterArgFilter appends a dispatch-argument filter.
func (h *Hooks) RegisterArgFilter(f ArgFilter) {
	h.argFilters = append(h.argFilters, f)
}

// RegisterServeFilter appends a serve-request filter.
func (h *Hooks) RegisterServeFilter(f ServeFilter) {
	h.serveFilters = append(h.serveFilters, f)
}

// SetDefaultCodec overrides the fallback codec choice.
func (h *Hooks) SetDefaultCodec(f CodecFilter) {
	h.codecFilter = f
}

// buildRoutes assembles the route table for a family: the built-in entries
// first, then each registered filter in order.
func (h *Hooks) buildRoutes(family Family, builtin []RouteEntry) []RouteEntry {
	entries := builtin
	for _, f := range h.routeFilters[family] {
		entries = f(entries)
	}
	return entries
}

// filterArgs runs the argument filters in order, short-circuiting on error.
func (h *Hooks) filterArgs(req *Request, args map[string]any) (map[string]any, error) {
	for _, f := range h.argFilters {
		next, err := f(req, args)
		if err != nil {
			return nil, err
		}
		args = next
	}
	return args, nil
}

// serve offers the response to each serve filter in order; the first one to
// claim it wins.
func (h *Hooks) serve(w http.ResponseWriter, req *Request, result any) bool {
	for _, f := range h.serveFilters {
		if f(w, req, result) {
			return true
		}
	}
	return false
}

func (h *Hooks) defaultCodec(req *Request) Codec {
	if h.codecFilter != nil {
		if c := h.codecFilter(req); c != nil {
			return c
		}
	}
	return JSONCodec{}
}
