// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Health endpoint paths.
const (
	PathHealth    = "/health"
	PathReadiness = "/readyz"
)

// readinessTimeout bounds all readiness checks of one probe.
const readinessTimeout = 5 * time.Second

// Routes registers the authorization server routes on a router.
type Routes interface {
	OAuthRoutes(r chi.Router)
	WellKnownRoutes(r chi.Router)
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type routerConfig struct {
	logger     *slog.Logger
	middleware []func(http.Handler) http.Handler
	limiter    *RateLimiter
	checks     map[string]Check
}

// RouterOption configures NewRouter.
type RouterOption func(*routerConfig)

// WithRouterLogger sets the access and panic logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMiddleware adds middleware around every route, health endpoints included.
func WithMiddleware(mw ...func(http.Handler) http.Handler) RouterOption {
	return func(c *routerConfig) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithRateLimiter limits the authorization server routes. Health endpoints
// are never limited.
func WithRateLimiter(l *RateLimiter) RouterOption {
	return func(c *routerConfig) {
		c.limiter = l
	}
}

// WithReadinessCheck adds a named check to the readiness endpoint.
func WithReadinessCheck(name string, check Check) RouterOption {
	return func(c *routerConfig) {
		c.checks[name] = check
	}
}

// NewRouter assembles the public router.
func NewRouter(routes Routes, opts ...RouterOption) http.Handler {
	cfg := &routerConfig{
		logger: slog.Default(),
		checks: make(map[string]Check),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(cfg.logger))
	r.Use(middleware.Recoverer)
	r.Use(cfg.middleware...)

	r.Get(PathHealth, handleHealth)
	r.Get(PathReadiness, handleReadiness(cfg.logger, cfg.checks))

	r.Group(func(r chi.Router) {
		if cfg.limiter != nil {
			r.Use(cfg.limiter.Middleware)
		}
		routes.OAuthRoutes(r)
		routes.WellKnownRoutes(r)
	})
	return r
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeStatus(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Debug("failed to encode health response", "error", err)
	}
}

// handleHealth confirms the process is serving. It reveals nothing else.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleReadiness runs every check and answers 503 when any fails.
func handleReadiness(logger *slog.Logger, checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		body := readinessBody{Status: "ready"}
		status := http.StatusOK
		if len(names) > 0 {
			body.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("readiness check failed", "check", name, "error", err)
				body.Checks[name] = "failing"
				body.Status = "not ready"
				status = http.StatusServiceUnavailable
				continue
			}
			body.Checks[name] = "ok"
		}
		writeStatus(w, status, body)
	}
}
