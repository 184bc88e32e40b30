// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type fakeRoutes struct{}

func (fakeRoutes) OAuthRoutes(r chi.Router) {
	r.Post("/api/token", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func (fakeRoutes) WellKnownRoutes(r chi.Router) {
	r.Get("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestNewRouter_Routes(t *testing.T) {
	t.Parallel()
	r := NewRouter(fakeRoutes{}, WithRouterLogger(slog.New(slog.DiscardHandler)))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/token").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/.well-known/openid-configuration").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodGet, "/api/token").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/nowhere").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/api/panic").Code)
}

func TestNewRouter_Health(t *testing.T) {
	t.Parallel()
	r := NewRouter(fakeRoutes{})

	rec := serve(r, http.MethodGet, PathHealth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(r, http.MethodGet, PathReadiness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestNewRouter_Readiness(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Check
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all checks pass",
			checks:     map[string]Check{"sessions": healthy, "users": healthy},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready","checks":{"sessions":"ok","users":"ok"}}`,
		},
		{
			name:       "one check fails",
			checks:     map[string]Check{"sessions": failing, "users": healthy},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"not ready","checks":{"sessions":"failing","users":"ok"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := []RouterOption{WithRouterLogger(slog.New(slog.DiscardHandler))}
			for name, check := range tt.checks {
				opts = append(opts, WithReadinessCheck(name, check))
			}

			rec := serve(NewRouter(fakeRoutes{}, opts...), http.MethodGet, PathReadiness)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestNewRouter_RateLimitSkipsHealth(t *testing.T) {
	t.Parallel()
	r := NewRouter(fakeRoutes{}, WithRateLimiter(NewRateLimiter(0.001, 1)))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/api/token").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/api/token").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/.well-known/openid-configuration").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, PathHealth).Code)
}

func TestNewRouter_Middleware(t *testing.T) {
	t.Parallel()

	var seen []string
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
	r := NewRouter(fakeRoutes{}, WithMiddleware(mw))

	serve(r, http.MethodGet, PathHealth)
	serve(r, http.MethodPost, "/api/token")

	assert.Equal(t, []string{PathHealth, "/api/token"}, seen)
}
