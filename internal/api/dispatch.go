// This file implements the dispatcher: classification, route matching,
// capability checks, argument assembly, binding, and handler invocation.
// Data flows one direction per request; every failure short-circuits the
// remaining stages and surfaces as a terminal error for that request.
package api

import "net/http"

// Reserved synthetic argument names, injectable into a handler like any
// named value.
const (
	ArgMethod  = "_method"
	ArgRoute   = "_route"
	ArgPath    = "_path"
	ArgHeaders = "_headers"
	ArgFiles   = "_files"

	// ArgData carries the request body (decoded or raw, per the binding's
	// capability mask).
	ArgData = "data"
)

// dispatch selects and invokes a handler for req against the given route
// table. path is the family-relative, URL-decoded request path.
//
// Selection is first-match-wins on both axes: entries in registration order,
// bindings in list order within an entry. A binding is skipped when its mask
// lacks the classified method bit or its entry's pattern does not match, so a
// path whose method bit is absent from every binding falls through to later
// entries before yielding no_route.
func dispatch(req *Request, path string, entries []RouteEntry, codec Codec, hooks *Hooks) (any, error) {
	method, cerr := Classify(req.Verb)
	if cerr != nil {
		return nil, cerr
	}

	var (
		selected   *HandlerBinding
		pattern    string
		pathParams map[string]string
	)
search:
	for i := range entries {
		for j := range entries[i].Bindings {
			b := &entries[i].Bindings[j]
			if !b.Mask.Has(method) {
				continue
			}
			params, ok := entries[i].match(path)
			if !ok {
				continue
			}
			selected = b
			pattern = entries[i].Pattern
			pathParams = params
			break search
		}
	}

	if selected == nil {
		return nil, NewError(ErrCodeNoRoute,
			"no route was found matching the URL and request method",
			http.StatusNotFound)
	}
	if selected.Handler == nil {
		return nil, NewError(ErrCodeInvalidHandler,
			"the handler for the route is invalid",
			http.StatusInternalServerError)
	}

	args, err := assembleArgs(req, method, pattern, pathParams, *selected, codec)
	if err != nil {
		return nil, err
	}

	// The dispatch-argument hook may rewrite the set or veto dispatch.
	args, err = hooks.filterArgs(req, args)
	if err != nil {
		return nil, err
	}

	bound, berr := bindParams(selected.Params, args)
	if berr != nil {
		return nil, berr
	}

	return selected.Handler(bound)
}

// assembleArgs merges the dispatch argument pool in ascending overwrite
// priority: captured path parameters, then query parameters, then (only for
// POST-bit methods) posted form parameters; the body data injection and the
// reserved synthetic arguments land last.
func assembleArgs(req *Request, method Method, pattern string, pathParams map[string]string, b HandlerBinding, codec Codec) (map[string]any, error) {
	args := make(map[string]any, len(pathParams)+len(req.Query)+8)

	for k, v := range pathParams {
		args[k] = v
	}
	for k, vs := range req.Query {
		args[k] = flatten(vs)
	}
	if method.Has(MethodPost) {
		for k, vs := range req.Body {
			args[k] = flatten(vs)
		}
	}

	// At most one of the data flags applies; decoded data wins.
	switch {
	case b.Mask.Has(AcceptData):
		data, err := codec.ParseBody(req.RawBody())
		if err != nil {
			return nil, NewError("invalid_request_body",
				"the request body could not be decoded: "+err.Error(),
				http.StatusBadRequest)
		}
		args[ArgData] = data
	case b.Mask.Has(AcceptRawData):
		args[ArgData] = req.RawBody()
	}

	args[ArgMethod] = method
	args[ArgRoute] = pattern
	args[ArgPath] = req.Path
	args[ArgHeaders] = req.Headers
	args[ArgFiles] = req.Files
	return args, nil
}

// flatten collapses a single-valued parameter to its scalar string; genuine
// multi-values stay a slice.
func flatten(vs []string) any {
	if len(vs) == 1 {
		return vs[0]
	}
	return []string(vs)
}
