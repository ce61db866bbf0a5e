// This file implements the top-level request handler: the authentication
// gate and the response assembler that orchestrates negotiation, the
// administrative disable flag, dispatch, error flattening, and serialization.
//
// Pipeline order per request:
//  1. Snapshot the request and negotiate the body codec; emit its
//     content-type header.
//  2. If the API is administratively disabled, emit 404 with the disabled
//     error body and skip everything else.
//  3. Run the authentication gate; on success, dispatch.
//  4. Map an error's status onto the HTTP status and flatten it into the
//     error-list envelope.
//  5. Offer serve-request filters the chance to claim the response.
//  6. Serialize through the negotiated codec, unless the original verb was
//     HEAD (which never emits a body).
package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-store-api/internal/domain"
)

// ServerConfig carries everything a Server needs at construction time. The
// store profile is an explicit value object; the engine reads no ambient
// global state.
type ServerConfig struct {
	Profile domain.StoreProfile

	// BasePath is the mount prefix the host strips from request paths,
	// e.g. "/api".
	BasePath string

	// Hooks holds the extension-point registrations. Nil means no hooks.
	Hooks *Hooks

	// Auth is the pluggable authentication collaborator. A nil Auth, or one
	// returning neither identity nor error, fails the gate.
	Auth Authenticator

	// MaxBodyBytes bounds the memoized request body; <= 0 uses
	// DefaultMaxBody.
	MaxBodyBytes int64

	Logger zerolog.Logger
}

// Server is the dispatch engine for one store. It is immutable after
// construction and safe for concurrent use: each request independently
// builds its route table from the registered filters.
type Server struct {
	profile  domain.StoreProfile
	basePath string
	hooks    *Hooks
	auth     Authenticator
	maxBody  int64
	log      zerolog.Logger
}

// NewServer constructs a Server from cfg.
func NewServer(cfg ServerConfig) *Server {
	hooks := cfg.Hooks
	if hooks == nil {
		hooks = NewHooks()
	}
	return &Server{
		profile:  cfg.Profile,
		basePath: cfg.BasePath,
		hooks:    hooks,
		auth:     cfg.Auth,
		maxBody:  cfg.MaxBodyBytes,
		log:      cfg.Logger,
	}
}

// Profile returns the store profile the server was constructed with.
func (s *Server) Profile() domain.StoreProfile { return s.profile }

// ServeHTTP implements http.Handler over the engine pipeline.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := NewRequest(r, s.basePath, s.maxBody)
	if err != nil {
		s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("failed reading request")
		writeFallback(w, http.StatusBadRequest, "invalid_request", "the request could not be read")
		return
	}

	codec := negotiateCodec(req, s.hooks)
	w.Header().Set("Content-Type", codec.ContentType()+"; charset=utf-8")

	result, derr := s.handle(req, codec)
	s.respond(w, req, codec, result, derr)
}

// handle runs the disable check, the authentication gate, and dispatch,
// returning either a domain value or the first terminal error.
func (s *Server) handle(req *Request, codec Codec) (any, error) {
	if !s.profile.APIEnabled {
		return nil, NewError(ErrCodeAPIDisabled,
			"the API is disabled on this store",
			http.StatusNotFound)
	}

	if err := s.authenticate(req); err != nil {
		return nil, err
	}

	family := negotiateFamily(req.Path)
	path := familyPath(req.Path, family)
	entries := s.hooks.buildRoutes(family, s.builtinRoutes(family))
	return dispatch(req, path, entries, codec, s.hooks)
}

// authenticate runs the authentication gate. The collaborator's explicit
// errors propagate unchanged; a recognized identity becomes the acting
// principal; neither is synthesized into authentication_error, because a
// pluggable authenticator must not silently produce "no opinion".
func (s *Server) authenticate(req *Request) error {
	if s.auth == nil {
		return NewError(ErrCodeAuthentication,
			"authentication failed",
			http.StatusInternalServerError)
	}
	identity, err := s.auth(req)
	if err != nil {
		return err
	}
	if identity == nil {
		return NewError(ErrCodeAuthentication,
			"authentication failed",
			http.StatusInternalServerError)
	}
	req.Principal = identity
	return nil
}

// respond maps the handler outcome onto the wire: status from the error
// envelope when present, serve-filter override, then codec serialization
// (suppressed for HEAD).
func (s *Server) respond(w http.ResponseWriter, req *Request, codec Codec, result any, err error) {
	if err != nil {
		env := Envelope(err)
		if status := env.Status(); status != 0 {
			w.WriteHeader(status)
		}
		s.log.Debug().
			Str("path", req.Path).
			Str("verb", req.Verb).
			Int("errors", len(env.Errors)).
			Msg("request failed")
		result = env
	}

	// Paged results contribute their link and count headers before the body
	// is committed.
	if p, ok := result.(Paged); ok {
		for _, h := range BuildPageHeaders(p.Cursor, req.URL, s.profile) {
			w.Header().Add(h.Name, h.Value)
		}
		result = p.Value
	}

	if s.hooks.serve(w, req, result) {
		return
	}
	if req.IsHead() {
		return
	}

	body, gerr := codec.GenerateResponse(result)
	if gerr != nil {
		s.log.Error().Err(gerr).Str("path", req.Path).Msg("response serialization failed")
		return
	}
	if _, werr := w.Write(body); werr != nil {
		s.log.Error().Err(werr).Str("path", req.Path).Msg("failed writing response")
	}
}

// writeFallback emits a minimal JSON error envelope for failures that happen
// before a codec is negotiated.
func writeFallback(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body, err := JSONCodec{}.GenerateResponse(ErrorList{
		Errors: []*Error{{Code: code, Message: msg, Status: status}},
	})
	if err != nil {
		return
	}
	_, _ = w.Write(body)
}
