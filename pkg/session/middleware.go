// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Cookie defaults.
const (
	DefaultCookieName = "authfront_session"
	DefaultTTL        = 24 * time.Hour
)

// Manager binds browser cookies to sessions in a Backend.
type Manager struct {
	backend      Backend
	ttl          time.Duration
	cookieName   string
	cookiePath   string
	cookieSecure bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTTL sets the session lifetime, extended on every write.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.cookieSecure = secure
	}
}

// NewManager creates a Manager over backend.
func NewManager(backend Backend, opts ...ManagerOption) *Manager {
	m := &Manager{
		backend:    backend,
		ttl:        DefaultTTL,
		cookieName: DefaultCookieName,
		cookiePath: "/",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open returns a handle on the session id.
func (m *Manager) Open(id string) *Session {
	return New(id, m.backend, m.ttl)
}

// Middleware resolves the session of each request from its cookie, issuing a
// new session ID when the cookie is missing or malformed, and stores the
// handle in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(m.cookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    id,
				Path:     m.cookiePath,
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				Secure:   m.cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), m.Open(id))))
	})
}

// Close closes the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
