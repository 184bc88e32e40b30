// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/session"
)

const clientRedirect = "https://client.example.com/cb"

func authorizationRequest(c *http.Cookie) *http.Request {
	return withCookie(httptest.NewRequest(http.MethodGet, PathAuthorization+"?response_type=code&client_id=c1", nil), c)
}

func TestAuthorization_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action       engine.AuthorizationAction
		wantStatus   int
		wantLocation string
	}{
		{action: engine.AuthorizationLocation, wantStatus: http.StatusFound, wantLocation: clientRedirect + "?error=x"},
		{action: engine.AuthorizationForm, wantStatus: http.StatusOK},
		{action: engine.AuthorizationBadRequest, wantStatus: http.StatusBadRequest},
		{action: engine.AuthorizationInternalServerError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			content := engineContent
			if tt.action == engine.AuthorizationLocation {
				content = clientRedirect + "?error=x"
			}
			f.api.EXPECT().Authorization(gomock.Any(), &engine.AuthorizationRequest{
				Parameters: "response_type=code&client_id=c1",
			}).Return(&engine.AuthorizationResponse{
				Action:          tt.action,
				ResponseContent: content,
				DPoPNonce:       testNonce,
			}, nil)

			rec := f.do(authorizationRequest(nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, testNonce, rec.Header().Get(response.HeaderDPoPNonce))
		})
	}
}

func TestAuthorization_Interaction(t *testing.T) {
	t.Parallel()

	client := &engine.Client{ClientID: 42, ClientName: "My Client"}
	interaction := func() *engine.AuthorizationResponse {
		return &engine.AuthorizationResponse{
			Action:        engine.AuthorizationInteraction,
			Ticket:        "ticket-1",
			Client:        client,
			Claims:        []string{"email", "name"},
			ClaimsLocales: []string{"en"},
			Scopes:        []engine.Scope{{Name: "openid"}, {Name: "profile", Description: "Your profile"}},
			LoginHint:     "jo",
			MaxAge:        600,
		}
	}

	t.Run("anonymous user sees the login form", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(interaction(), nil)

		cookie := f.seedSession(t, nil)
		rec := f.do(authorizationRequest(cookie))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, response.ContentTypeHTML, rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "My Client")
		assert.Contains(t, body, "Your profile")
		assert.Contains(t, body, `name="loginId" value="jo"`)
		assert.Contains(t, body, `action="/api/authorization/decision"`)

		v := f.sessionValues(t, cookie)
		assert.Equal(t, "ticket-1", v.Ticket)
		assert.Equal(t, []string{"email", "name"}, v.ClaimNames)
		assert.Equal(t, []string{"en"}, v.ClaimLocales)
		assert.Equal(t, client, v.Client)
	})

	t.Run("signed in user is kept", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(interaction(), nil)

		cookie := f.seedSession(t, &session.Values{User: testUser, AuthTime: testNow.Add(-time.Minute).Unix()},
			session.KeyUser, session.KeyAuthTime)
		rec := f.do(authorizationRequest(cookie))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Signed in as John Smith")
		assert.NotContains(t, rec.Body.String(), `name="password"`)
		assert.Equal(t, testUser.Subject, f.sessionValues(t, cookie).User.Subject)
	})

	t.Run("stale authentication is purged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(interaction(), nil)

		cookie := f.seedSession(t, &session.Values{User: testUser, AuthTime: testNow.Add(-time.Hour).Unix()},
			session.KeyUser, session.KeyAuthTime)
		rec := f.do(authorizationRequest(cookie))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="password"`)
		v := f.sessionValues(t, cookie)
		assert.Nil(t, v.User)
		assert.Zero(t, v.AuthTime)
	})

	t.Run("prompt=login purges the user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		resp := interaction()
		resp.Prompts = []engine.Prompt{engine.PromptLogin}
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(resp, nil)

		cookie := f.seedSession(t, &session.Values{User: testUser, AuthTime: testNow.Unix()},
			session.KeyUser, session.KeyAuthTime)
		rec := f.do(authorizationRequest(cookie))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, f.sessionValues(t, cookie).User)
	})

	t.Run("user other than the requested subject must sign in", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		resp := interaction()
		resp.Subject = "2002"
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(resp, nil)

		cookie := f.seedSession(t, &session.Values{User: testUser, AuthTime: testNow.Unix()},
			session.KeyUser, session.KeyAuthTime)
		rec := f.do(authorizationRequest(cookie))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="password"`)
	})

	t.Run("renderer failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, WithConsentRenderer(failingRenderer{}))
		f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(interaction(), nil)

		rec := f.do(authorizationRequest(nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

type failingRenderer struct{}

func (failingRenderer) Render(*ConsentPage) (string, error) { return "", errors.New("template broken") }

func TestAuthorization_NoInteraction(t *testing.T) {
	t.Parallel()

	pairwiseClient := &engine.Client{
		ClientID:                42,
		SubjectType:             "PAIRWISE",
		DerivedSectorIdentifier: "https://client.example.com",
	}

	tests := []struct {
		name       string
		resp       func(r *engine.AuthorizationResponse)
		seed       *session.Values
		wantReason engine.AuthorizationFailReason
		wantPurged bool
	}{
		{
			name:       "not logged in",
			wantReason: engine.ReasonNotLoggedIn,
		},
		{
			name:       "prompt=login fails even with a valid session",
			resp:       func(r *engine.AuthorizationResponse) { r.Prompts = []engine.Prompt{engine.PromptLogin} },
			seed:       &session.Values{User: testUser, AuthTime: testNow.Unix()},
			wantReason: engine.ReasonNotLoggedIn,
			wantPurged: true,
		},
		{
			name:       "prompt=select_account",
			resp:       func(r *engine.AuthorizationResponse) { r.Prompts = []engine.Prompt{engine.PromptSelectAccount} },
			seed:       &session.Values{User: testUser, AuthTime: testNow.Unix()},
			wantReason: engine.ReasonNotLoggedIn,
		},
		{
			name:       "authentication older than max_age",
			resp:       func(r *engine.AuthorizationResponse) { r.MaxAge = 60 },
			seed:       &session.Values{User: testUser, AuthTime: testNow.Add(-2 * time.Minute).Unix()},
			wantReason: engine.ReasonExceedsMaxAge,
			wantPurged: true,
		},
		{
			name:       "unknown authentication time with max_age",
			resp:       func(r *engine.AuthorizationResponse) { r.MaxAge = 60 },
			seed:       &session.Values{User: testUser},
			wantReason: engine.ReasonExceedsMaxAge,
			wantPurged: true,
		},
		{
			name:       "different subject",
			resp:       func(r *engine.AuthorizationResponse) { r.Subject = "2002" },
			seed:       &session.Values{User: testUser, AuthTime: testNow.Unix()},
			wantReason: engine.ReasonDifferentSubject,
		},
		{
			name: "valid session",
			resp: func(r *engine.AuthorizationResponse) {
				r.MaxAge = 600
				r.Subject = testUser.Subject
			},
			seed: &session.Values{User: testUser, AuthTime: testNow.Add(-time.Minute).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			resp := &engine.AuthorizationResponse{
				Action:  engine.AuthorizationNoInteraction,
				Ticket:  "ticket-1",
				Client:  pairwiseClient,
				Claims:  []string{"email"},
				Prompts: []engine.Prompt{engine.PromptNone},
			}
			if tt.resp != nil {
				tt.resp(resp)
			}
			f.api.EXPECT().Authorization(gomock.Any(), gomock.Any()).Return(resp, nil)

			if tt.wantReason != "" {
				f.api.EXPECT().AuthorizationFail(gomock.Any(), &engine.AuthorizationFailRequest{
					Ticket: "ticket-1",
					Reason: tt.wantReason,
				}).Return(&engine.AuthorizationResultResponse{
					Action:          engine.AuthorizationResultLocation,
					ResponseContent: clientRedirect + "?error=login_required",
				}, nil)
			} else {
				f.api.EXPECT().AuthorizationIssue(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, req *engine.AuthorizationIssueRequest) (*engine.AuthorizationResultResponse, error) {
						assert.Equal(t, "ticket-1", req.Ticket)
						assert.Equal(t, testUser.Subject, req.Subject)
						assert.Equal(t, testNow.Add(-time.Minute).Unix(), req.AuthTime)
						assert.Len(t, req.Sub, 64)
						assert.NotEqual(t, testUser.Subject, req.Sub)
						var claims map[string]any
						require.NoError(t, json.Unmarshal([]byte(req.Claims), &claims))
						assert.Equal(t, map[string]any{"email": testUser.Email}, claims)
						return &engine.AuthorizationResultResponse{
							Action:          engine.AuthorizationResultLocation,
							ResponseContent: clientRedirect + "?code=abc",
						}, nil
					})
			}

			var cookie *http.Cookie
			if tt.seed != nil {
				cookie = f.seedSession(t, tt.seed, session.KeyUser, session.KeyAuthTime)
			}
			rec := f.do(authorizationRequest(cookie))

			require.Equal(t, http.StatusFound, rec.Code)
			if tt.wantReason != "" {
				assert.Equal(t, clientRedirect+"?error=login_required", rec.Header().Get("Location"))
			} else {
				assert.Equal(t, clientRedirect+"?code=abc", rec.Header().Get("Location"))
			}

			if cookie != nil {
				v := f.sessionValues(t, cookie)
				if tt.wantPurged {
					assert.Nil(t, v.User)
				} else {
					require.NotNil(t, v.User)
					assert.Equal(t, testUser.Subject, v.User.Subject)
				}
			}
		})
	}
}

func TestAuthorizationResult_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action     engine.AuthorizationResultAction
		wantStatus int
	}{
		{action: engine.AuthorizationResultLocation, wantStatus: http.StatusFound},
		{action: engine.AuthorizationResultForm, wantStatus: http.StatusOK},
		{action: engine.AuthorizationResultBadRequest, wantStatus: http.StatusBadRequest},
		{action: engine.AuthorizationResultInternalServerError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			out, err := f.handler.buildAuthorizationResult(context.Background(), PathDecision,
				&engine.AuthorizationResultResponse{Action: tt.action, ResponseContent: clientRedirect})
			if err != nil {
				var respErr *response.ResponseError
				require.ErrorAs(t, err, &respErr)
				assert.Equal(t, response.KindEngineAction, respErr.Kind)
				out = respErr.Response
			}
			assert.Equal(t, tt.wantStatus, out.StatusCode)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.handler.buildAuthorizationResult(context.Background(), PathDecision,
			&engine.AuthorizationResultResponse{Action: "NEW"})
		var unknown *response.UnknownActionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, PathDecision, unknown.Path)
		assert.Equal(t, "NEW", unknown.Action)
	})
}
