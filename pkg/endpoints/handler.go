// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/authfront/pkg/claims"
	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/pipeline"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/users"
)

// Endpoint paths.
const (
	PathPushedAuthReq      = "/api/par"
	PathAuthorization      = "/api/authorization"
	PathDecision           = "/api/authorization/decision"
	PathToken              = "/api/token"
	PathIntrospection      = "/api/introspection"
	PathRevocation         = "/api/revocation"
	PathUserInfo           = "/api/userinfo"
	PathJWKS               = "/api/jwks"
	PathDiscovery          = "/.well-known/openid-configuration"
	PathCredentialMetadata = "/.well-known/openid-credential-issuer"
)

// DefaultMaxBodySize bounds form-encoded request bodies.
const DefaultMaxBodySize int64 = 1 << 20

// Handler serves the adapter endpoints. Each endpoint is a pipeline built
// once in NewHandler.
type Handler struct {
	logger    *slog.Logger
	api       engine.API
	users     users.Store
	sessions  *session.Manager
	claims    *claims.Collector
	consent   ConsentRenderer
	recoverer pipeline.Recoverer
	now       func() time.Time

	publicURL        string
	clientCertHeader string
	resourceServers  map[string]string
	maxBodySize      int64
	credentialPretty bool
	endpoints        map[string]http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClaimsCollector replaces the claims collector.
func WithClaimsCollector(c *claims.Collector) Option {
	return func(h *Handler) {
		if c != nil {
			h.claims = c
		}
	}
}

// WithConsentRenderer replaces the consent page renderer.
func WithConsentRenderer(r ConsentRenderer) Option {
	return func(h *Handler) {
		if r != nil {
			h.consent = r
		}
	}
}

// WithRecoverer replaces the terminal error recovery stage.
func WithRecoverer(r pipeline.Recoverer) Option {
	return func(h *Handler) {
		if r != nil {
			h.recoverer = r
		}
	}
}

// WithPublicURL sets the externally visible base URL, used as the DPoP htu.
// When unset the URL is derived from each request.
func WithPublicURL(u string) Option {
	return func(h *Handler) {
		h.publicURL = strings.TrimRight(u, "/")
	}
}

// WithClientCertificateHeader names a header carrying the URL-escaped PEM
// client certificate forwarded by a TLS-terminating proxy.
func WithClientCertificateHeader(name string) Option {
	return func(h *Handler) {
		h.clientCertHeader = name
	}
}

// WithResourceServers requires introspection callers to authenticate with
// HTTP Basic using one of the given id/secret pairs.
func WithResourceServers(servers map[string]string) Option {
	return func(h *Handler) {
		h.resourceServers = servers
	}
}

// WithMaxBodySize bounds request bodies.
func WithMaxBodySize(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// WithPrettyCredentialMetadata asks the engine to indent credential issuer metadata.
func WithPrettyCredentialMetadata(pretty bool) Option {
	return func(h *Handler) {
		h.credentialPretty = pretty
	}
}

// withClock replaces the time source. Used by tests.
func withClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a Handler.
func NewHandler(api engine.API, store users.Store, sessions *session.Manager, opts ...Option) (*Handler, error) {
	var errs []error
	if api == nil {
		errs = append(errs, errors.New("engine API is required"))
	}
	if store == nil {
		errs = append(errs, errors.New("user store is required"))
	}
	if sessions == nil {
		errs = append(errs, errors.New("session manager is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	h := &Handler{
		logger:      slog.Default(),
		api:         api,
		users:       store,
		sessions:    sessions,
		claims:      claims.NewCollector(),
		now:         time.Now,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.consent == nil {
		h.consent = NewTemplateRenderer(PathDecision)
	}
	if h.recoverer == nil {
		h.recoverer = pipeline.NewErrorRecovery(h.logger)
	}

	if err := h.build(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Handler) build() error {
	builders := map[string]func() (http.Handler, error){
		PathPushedAuthReq:      h.pushedAuthReqEndpoint,
		PathAuthorization:      h.authorizationEndpoint,
		PathDecision:           h.decisionEndpoint,
		PathToken:              h.tokenEndpoint,
		PathIntrospection:      h.introspectionEndpoint,
		PathRevocation:         h.revocationEndpoint,
		PathUserInfo:           h.userInfoEndpoint,
		PathJWKS:               h.jwksEndpoint,
		PathDiscovery:          h.discoveryEndpoint,
		PathCredentialMetadata: h.credentialMetadataEndpoint,
	}

	h.endpoints = make(map[string]http.Handler, len(builders))
	var errs []error
	for path, build := range builders {
		e, err := build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		h.endpoints[path] = e
	}
	return errors.Join(errs...)
}

// Routes returns a router with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.OAuthRoutes(r)
	h.WellKnownRoutes(r)
	return r
}

// OAuthRoutes registers the OAuth and OpenID Connect endpoints on r.
// Browser-facing endpoints run inside the session middleware.
func (h *Handler) OAuthRoutes(r chi.Router) {
	r.Post(PathPushedAuthReq, h.endpoints[PathPushedAuthReq].ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Middleware)
		r.Get(PathAuthorization, h.endpoints[PathAuthorization].ServeHTTP)
		r.Post(PathAuthorization, h.endpoints[PathAuthorization].ServeHTTP)
		r.Post(PathDecision, h.endpoints[PathDecision].ServeHTTP)
	})

	r.Post(PathToken, h.endpoints[PathToken].ServeHTTP)
	r.Post(PathIntrospection, h.endpoints[PathIntrospection].ServeHTTP)
	r.Post(PathRevocation, h.endpoints[PathRevocation].ServeHTTP)
	r.Get(PathUserInfo, h.endpoints[PathUserInfo].ServeHTTP)
	r.Post(PathUserInfo, h.endpoints[PathUserInfo].ServeHTTP)
	r.Get(PathJWKS, h.endpoints[PathJWKS].ServeHTTP)
}

// WellKnownRoutes registers the discovery endpoints on r.
func (h *Handler) WellKnownRoutes(r chi.Router) {
	r.Get(PathDiscovery, h.endpoints[PathDiscovery].ServeHTTP)
	r.Get(PathCredentialMetadata, h.endpoints[PathCredentialMetadata].ServeHTTP)
}
