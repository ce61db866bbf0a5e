// This file implements content negotiation. Two independent choices happen
// before dispatch: which body codec serializes the request/response, and
// which handler family (API generation) the route table is built from.
package api

import "strings"

// Family selects a handler generation. Old and new API generations coexist
// on the same dispatch engine and share the same body codec logic.
type Family int

const (
	// FamilyLegacy serves paths without the current version marker.
	FamilyLegacy Family = iota
	// FamilyCurrent serves paths carrying the current major version marker.
	FamilyCurrent
)

// versionMarker is the current major API version path marker.
const versionMarker = "/v3"

// negotiateCodec picks the body codec for a request.
//
// Precedence:
//  1. ".json" path suffix
//  2. Accept header exactly "application/json"
//  3. ".xml" path suffix
//  4. Accept header exactly "application/xml" or "text/xml"
//  5. the default-codec hook (JSON unless overridden)
func negotiateCodec(req *Request, hooks *Hooks) Codec {
	accept := strings.TrimSpace(req.Header("Accept"))
	switch {
	case strings.HasSuffix(req.FullPath, ".json"):
		return JSONCodec{}
	case accept == "application/json":
		return JSONCodec{}
	case strings.HasSuffix(req.FullPath, ".xml"):
		return XMLCodec{}
	case accept == "application/xml" || accept == "text/xml":
		return XMLCodec{}
	default:
		return hooks.defaultCodec(req)
	}
}

// negotiateFamily picks the handler family from the path alone: a path under
// the current major version marker selects the current family, anything else
// falls back to the legacy family, regardless of codec choice. The marker
// only counts as a leading segment, matching what familyPath strips.
func negotiateFamily(path string) Family {
	if path == versionMarker || strings.HasPrefix(path, versionMarker+"/") {
		return FamilyCurrent
	}
	return FamilyLegacy
}

// familyPath strips the current version marker prefix so both families can
// register patterns against version-free paths.
func familyPath(path string, family Family) string {
	if family != FamilyCurrent {
		return path
	}
	trimmed := strings.TrimPrefix(path, versionMarker)
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
