// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/authfront/pkg/engine"
	enginemocks "github.com/stacklok/authfront/pkg/engine/mocks"
	"github.com/stacklok/authfront/pkg/pipeline"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/users"
	usersmocks "github.com/stacklok/authfront/pkg/users/mocks"
)

var testNow = time.Unix(1_700_000_000, 0)

const testNonce = "nonce-1"

type fixture struct {
	api      *enginemocks.MockAPI
	users    *usersmocks.MockStore
	sessions *session.Manager
	handler  *Handler
	router   http.Handler
	now      time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		api:      enginemocks.NewMockAPI(ctrl),
		users:    usersmocks.NewMockStore(ctrl),
		sessions: session.NewManager(session.NewMemoryBackend()),
		now:      testNow,
	}
	t.Cleanup(func() { _ = f.sessions.Close() })

	logger := slog.New(slog.DiscardHandler)
	all := append([]Option{
		WithLogger(logger),
		WithRecoverer(pipeline.NewErrorRecovery(logger)),
		WithPublicURL("https://as.example.com/"),
		withClock(func() time.Time { return f.now }),
	}, opts...)

	h, err := NewHandler(f.api, f.users, f.sessions, all...)
	require.NoError(t, err)
	f.handler = h
	f.router = h.Routes()
	return f
}

func (f *fixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

// seedSession stores v under keys in a fresh session and returns its cookie.
func (f *fixture) seedSession(t *testing.T, v *session.Values, keys ...session.Key) *http.Cookie {
	t.Helper()
	id := uuid.NewString()
	if len(keys) > 0 {
		require.NoError(t, f.sessions.Open(id).SetBatch(context.Background(), v, keys...))
	}
	return &http.Cookie{Name: session.DefaultCookieName, Value: id}
}

func (f *fixture) sessionValues(t *testing.T, c *http.Cookie) *session.Values {
	t.Helper()
	v, err := f.sessions.Open(c.Value).GetBatch(context.Background(), session.AllKeys...)
	require.NoError(t, err)
	return v
}

func postForm(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", formContentType)
	return r
}

func withCookie(r *http.Request, c *http.Cookie) *http.Request {
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

var testUser = &users.User{
	Subject: "1001",
	LoginID: "john",
	Name:    "John Smith",
	Email:   "john@example.com",
}

func TestNewHandler_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewHandler(nil, nil, nil)
	require.Error(t, err)
	for _, want := range []string{"engine API", "user store", "session manager"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestHandler_RoutesEveryEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	assert.Len(t, f.handler.endpoints, 10)

	f.api.EXPECT().Configuration(gomock.Any()).Return(engine.RawDocument(`{"issuer":"x"}`), nil)
	rec := f.do(httptest.NewRequest(http.MethodGet, PathDiscovery, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, PathToken, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadParams(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithMaxBodySize(32))

	tests := []struct {
		name       string
		request    func() *http.Request
		allowGet   bool
		wantRaw    string
		wantStatus int
	}{
		{
			name: "form body",
			request: func() *http.Request {
				return postForm("/", url.Values{"a": {"1"}})
			},
			wantRaw: "a=1",
		},
		{
			name: "query string when GET is allowed",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/?response_type=code", nil)
			},
			allowGet: true,
			wantRaw:  "response_type=code",
		},
		{
			name: "GET when only POST is allowed",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/?a=1", nil)
			},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name: "wrong content type",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "body too large",
			request: func() *http.Request {
				return postForm("/", url.Values{"a": {strings.Repeat("x", 64)}})
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name: "malformed encoding",
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=%zz"))
				r.Header.Set("Content-Type", formContentType)
				return r
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := f.handler.readParams(tt.request(), tt.allowGet)
			if tt.wantStatus != 0 {
				var respErr *response.ResponseError
				require.ErrorAs(t, err, &respErr)
				assert.Equal(t, response.KindValidation, respErr.Kind)
				assert.Equal(t, tt.wantStatus, respErr.Response.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, p.raw)
		})
	}
}

func TestClientAuth(t *testing.T) {
	t.Parallel()

	const certPEM = "-----BEGIN CERTIFICATE-----\nMIIBszCCAVmgAwIBAgIUZm9v\n-----END CERTIFICATE-----\n"
	f := newFixture(t, WithClientCertificateHeader("X-Client-Cert"))

	t.Run("basic credentials win over the body", func(t *testing.T) {
		t.Parallel()
		r := postForm("/", url.Values{"client_id": {"body-id"}, "client_secret": {"body-secret"}})
		r.SetBasicAuth(url.QueryEscape("client:1"), url.QueryEscape("s3cr=t"))
		p, err := f.handler.readParams(r, false)
		require.NoError(t, err)

		auth, err := f.handler.clientAuth(r, p)
		require.NoError(t, err)
		assert.Equal(t, "client:1", auth.ClientID)
		assert.Equal(t, "s3cr=t", auth.ClientSecret)
	})

	t.Run("body credentials", func(t *testing.T) {
		t.Parallel()
		r := postForm("/", url.Values{"client_id": {"body-id"}, "client_secret": {"body-secret"}})
		p, err := f.handler.readParams(r, false)
		require.NoError(t, err)

		auth, err := f.handler.clientAuth(r, p)
		require.NoError(t, err)
		assert.Equal(t, "body-id", auth.ClientID)
		assert.Equal(t, "body-secret", auth.ClientSecret)
	})

	t.Run("certificate from proxy header", func(t *testing.T) {
		t.Parallel()
		r := postForm("/", url.Values{})
		r.Header.Set("X-Client-Cert", url.QueryEscape(certPEM))

		auth, err := f.handler.clientAuth(r, nil)
		require.NoError(t, err)
		assert.Equal(t, certPEM, auth.ClientCertificate)
	})

	t.Run("proxy header without a certificate", func(t *testing.T) {
		t.Parallel()
		r := postForm("/", url.Values{})
		r.Header.Set("X-Client-Cert", "not-a-cert")

		_, err := f.handler.clientAuth(r, nil)
		var respErr *response.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusBadRequest, respErr.Response.StatusCode)
	})
}

func TestAccessToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		form   url.Values
		want   string
	}{
		{name: "bearer header", header: "Bearer abc", want: "abc"},
		{name: "dpop header", header: "DPoP xyz", want: "xyz"},
		{name: "scheme is case insensitive", header: "bearer abc", want: "abc"},
		{name: "form parameter", form: url.Values{"access_token": {"form-token"}}, want: "form-token"},
		{name: "other scheme", header: "Basic Zm9vOmJhcg==", want: ""},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(headerAuthorization, tt.header)
			}
			var p *params
			if tt.form != nil {
				p = &params{raw: tt.form.Encode(), values: tt.form}
			}
			assert.Equal(t, tt.want, accessToken(r, p))
		})
	}
}

func TestDPoPInput(t *testing.T) {
	t.Parallel()

	t.Run("public URL", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		r := postForm(PathToken, url.Values{})
		r.Header.Set(headerDPoP, "proof")

		got := f.handler.dpop(r)
		assert.Equal(t, engine.DPoPInput{DPoP: "proof", HTM: http.MethodPost, HTU: "https://as.example.com/api/token"}, got)
	})

	t.Run("derived from the request", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, WithPublicURL(""))
		r := postForm(PathToken, url.Values{})
		r.Host = "proxy.internal:8080"
		r.Header.Set("X-Forwarded-Proto", "https")

		assert.Equal(t, "https://proxy.internal:8080/api/token", f.handler.dpop(r).HTU)
	})
}
