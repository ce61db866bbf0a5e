// This file defines the route table: an ordered mapping from regex path
// pattern to one or more handler bindings, plus the normalization and
// display-rewrite rules the dispatcher and the self-description index share.
//
// Invariants:
//   - Entries are tried strictly in registration order; within an entry,
//     bindings are tried in list order. First match wins on both axes.
//   - Patterns are compiled anchored and case-insensitive and matched against
//     the URL-decoded path. Named captures become dispatch parameters.
//   - The table is built once per dispatch cycle and read-only afterwards;
//     concurrent requests each see a logically identical, immutable table.
package api

import (
	"regexp"
	"strings"
)

// Handler is an engine endpoint callback. It receives the positional
// arguments produced by the parameter binder, in the order declared by the
// binding's Params manifest, and returns either a domain value or an error
// (*Error and ErrorList are surfaced verbatim on the wire).
type Handler func(args []any) (any, error)

// Param describes one declared handler parameter: its name in the dispatch
// argument pool, and an optional default used when no value is supplied.
//
// Manifests replace call-time signature introspection: the binder is purely
// data-driven, and a handler's parameter order is fixed at registration.
type Param struct {
	Name       string
	HasDefault bool
	Default    any
}

// Optional builds a Param with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, HasDefault: true, Default: def}
}

// Required builds a Param with no default; binding fails if it is absent.
func Required(name string) Param {
	return Param{Name: name}
}

// HandlerBinding pairs a handler with its capability mask and parameter
// manifest. The mask combines method bits with behavior flags (AcceptData,
// AcceptRawData, HiddenEndpoint).
type HandlerBinding struct {
	Handler Handler
	Mask    Method
	Params  []Param
}

// Bind is shorthand for constructing a HandlerBinding.
func Bind(h Handler, mask Method, params ...Param) HandlerBinding {
	return HandlerBinding{Handler: h, Mask: mask, Params: params}
}

// RouteEntry is one ordered route-table row: a compiled path pattern and its
// handler bindings. A single entry may carry multiple bindings so one path
// can serve different handlers per verb.
type RouteEntry struct {
	Pattern  string
	Bindings []HandlerBinding

	re *regexp.Regexp
}

// NewRoute compiles pattern into a RouteEntry. A bare (handler, mask) pair
// and a list of bindings both normalize to the same shape: pass one or more
// bindings variadically.
//
// The pattern is a regular expression with named captures, e.g.
// "/orders/(?P<id>\\d+)". It is anchored and matched case-insensitively.
// NewRoute panics on an invalid pattern; routes are registered at startup,
// where a bad pattern is a programming error.
func NewRoute(pattern string, bindings ...HandlerBinding) RouteEntry {
	return RouteEntry{
		Pattern:  pattern,
		Bindings: bindings,
		re:       regexp.MustCompile("(?i)^" + pattern + "$"),
	}
}

// match runs the entry's pattern against the URL-decoded path and extracts
// named captures as parameters. The boolean reports whether the path matched.
func (e RouteEntry) match(path string) (map[string]string, bool) {
	if e.re == nil {
		return nil, false
	}
	m := e.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := map[string]string{}
	for i, name := range e.re.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = m[i]
		}
	}
	return params, true
}

// hidden reports whether any binding carries the HiddenEndpoint flag, which
// hides the whole route from the self-description index.
func (e RouteEntry) hidden() bool {
	for _, b := range e.Bindings {
		if b.Mask.Has(HiddenEndpoint) {
			return true
		}
	}
	return false
}

// hasCaptures reports whether the pattern declares any named capture group.
func (e RouteEntry) hasCaptures() bool {
	if e.re == nil {
		return false
	}
	for _, name := range e.re.SubexpNames() {
		if name != "" {
			return true
		}
	}
	return false
}

// displayPattern rewrites named capture groups to their bare capture-name
// form for the self-description index: "(?P<id>\d+)" becomes "<id>". The
// scan balances parentheses so nested groups inside a capture are consumed.
func (e RouteEntry) displayPattern() string {
	var out strings.Builder
	s := e.Pattern
	for {
		start := strings.Index(s, "(?P<")
		if start < 0 {
			out.WriteString(s)
			break
		}
		out.WriteString(s[:start])

		rest := s[start+len("(?P<"):]
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			out.WriteString(s[start:])
			break
		}
		name := rest[:end]

		// Skip to the group's closing paren, balancing nested parens.
		depth := 1
		i := end + 1
		for i < len(rest) && depth > 0 {
			switch rest[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
			i++
		}
		out.WriteString("<" + name + ">")
		s = rest[i:]
	}
	return out.String()
}
