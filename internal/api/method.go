// Package api implements the request-dispatch core of the storefront REST
// façade: an ordered regex route table, a capability bitmask protocol,
// manifest-driven parameter binding, JSON/XML content negotiation, pagination
// link headers, and wire/storage datetime normalization.
//
// The package is transport-agnostic: it consumes a Request abstraction built
// from *http.Request and writes through http.ResponseWriter, but it performs
// its own routing and serialization independent of the host mux. The host
// (internal/http) mounts a Server under the configured API base path and
// treats everything below it as opaque.
package api

import (
	"net/http"
	"strings"
)

// Method is a bitmask of HTTP method support and handler behavior flags.
//
// Method bits and behavior bits share one mask so a single integer fully
// describes what a handler binding supports: which verbs it accepts, whether
// it wants the request body (parsed or raw), and whether it is hidden from
// the self-description index.
type Method uint16

// Method bits. Bit 32 is reserved (historically an unused verb slot).
const (
	MethodGet    Method = 1
	MethodPost   Method = 2
	MethodPut    Method = 4
	MethodPatch  Method = 8
	MethodDelete Method = 16

	// AcceptRawData marks a binding that wants the unparsed request body
	// injected under the reserved "data" argument.
	AcceptRawData Method = 64

	// AcceptData marks a binding that wants the request body decoded through
	// the negotiated codec and injected under the reserved "data" argument.
	// When both AcceptData and AcceptRawData are set, AcceptData wins.
	AcceptData Method = 128

	// HiddenEndpoint excludes the binding's whole route from the
	// self-description index.
	HiddenEndpoint Method = 256
)

// Composite capability constants, derived once from the method bits.
const (
	Readable   = MethodGet
	Creatable  = MethodPost
	Editable   = MethodPost | MethodPut | MethodPatch
	Deletable  = MethodDelete
	AllMethods = MethodGet | MethodPost | MethodPut | MethodPatch | MethodDelete
)

// methodBits holds the verb-name order used by the self-description index.
// HEAD is not listed: it is an alias for GET on the wire.
var methodBits = []struct {
	Bit  Method
	Name string
}{
	{MethodGet, http.MethodGet},
	{MethodPost, http.MethodPost},
	{MethodPut, http.MethodPut},
	{MethodPatch, http.MethodPatch},
	{MethodDelete, http.MethodDelete},
}

// Has reports whether every bit of flag is set in m.
func (m Method) Has(flag Method) bool { return m&flag == flag }

// Classify maps an HTTP verb onto its method bit.
//
// HEAD and GET both classify to MethodGet. Every other verb fails with
// ErrCodeUnsupportedMethod (400): this API generation dispatches read
// operations only, and the asymmetry between the full bitmask vocabulary and
// the classifier is deliberate. The POST/PUT/PATCH/DELETE bits exist so route
// masks and the index endpoint agree on capability names, not because the
// classifier routes them.
//
// Callers that cannot issue non-GET verbs natively may substitute the
// effective verb through the _method query parameter; that substitution
// happens in NewRequest, before Classify ever sees the verb.
func Classify(verb string) (Method, *Error) {
	switch strings.ToUpper(verb) {
	case http.MethodHead, http.MethodGet:
		return MethodGet, nil
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		// Recognized by the bitmask model but not dispatched in this
		// generation. Do not silently complete these.
		return 0, Unsupported(verb)
	default:
		return 0, Unsupported(verb)
	}
}

// Unsupported builds the UNSUPPORTED_METHOD error for a verb.
func Unsupported(verb string) *Error {
	return NewError(ErrCodeUnsupportedMethod, "unsupported method: "+strings.ToUpper(verb), http.StatusBadRequest)
}

// supportedVerbs returns the wire verb names enabled by mask, in the fixed
// index order. GET support implies HEAD support, which is listed first the
// way clients expect to see it.
func supportedVerbs(mask Method) []string {
	var verbs []string
	if mask.Has(MethodGet) {
		verbs = append(verbs, http.MethodHead)
	}
	for _, mb := range methodBits {
		if mask.Has(mb.Bit) {
			verbs = append(verbs, mb.Name)
		}
	}
	return verbs
}
