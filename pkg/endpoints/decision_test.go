// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/users"
)

func pendingTransaction() *session.Values {
	return &session.Values{
		Ticket:     "ticket-1",
		ClaimNames: []string{"name"},
		Client:     &engine.Client{ClientID: 42},
	}
}

var pendingKeys = []session.Key{session.KeyTicket, session.KeyClaimNames, session.KeyClient}

func decisionRequestFor(c *http.Cookie, form url.Values) *http.Request {
	return withCookie(postForm(PathDecision, form), c)
}

func TestDecision_MissingTicket(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.do(decisionRequestFor(nil, url.Values{"authorized": {"true"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_request","error_description":"Ticket is required"}`, rec.Body.String())
}

func TestDecision_Denied(t *testing.T) {
	t.Parallel()

	for name, form := range map[string]url.Values{
		"deny button":       {"denied": {"true"}},
		"no authorization":  {"loginId": {"john"}, "password": {"pw"}},
		"both buttons sent": {"authorized": {"true"}, "denied": {"true"}},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			cookie := f.seedSession(t, pendingTransaction(), pendingKeys...)

			f.api.EXPECT().AuthorizationFail(gomock.Any(), &engine.AuthorizationFailRequest{
				Ticket:      "ticket-1",
				Reason:      engine.ReasonDenied,
				Description: "The end-user denied the authorization request",
			}).Return(&engine.AuthorizationResultResponse{
				Action:          engine.AuthorizationResultLocation,
				ResponseContent: clientRedirect + "?error=access_denied",
			}, nil)

			rec := f.do(decisionRequestFor(cookie, form))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, clientRedirect+"?error=access_denied", rec.Header().Get("Location"))
			assert.Empty(t, f.sessionValues(t, cookie).Ticket)
		})
	}
}

func TestDecision_InvalidCredentials(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cookie := f.seedSession(t, pendingTransaction(), pendingKeys...)

	f.users.EXPECT().Authenticate(gomock.Any(), "john", "wrong").Return(nil, users.ErrInvalidCredentials)
	f.api.EXPECT().AuthorizationFail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *engine.AuthorizationFailRequest) (*engine.AuthorizationResultResponse, error) {
			assert.Equal(t, engine.ReasonNotAuthenticated, req.Reason)
			return &engine.AuthorizationResultResponse{
				Action:          engine.AuthorizationResultLocation,
				ResponseContent: clientRedirect + "?error=login_required",
			}, nil
		})

	rec := f.do(decisionRequestFor(cookie, url.Values{
		"authorized": {"true"}, "loginId": {"john"}, "password": {"wrong"},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Nil(t, f.sessionValues(t, cookie).User)
}

func TestDecision_NoCredentialsAndNoUser(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	cookie := f.seedSession(t, pendingTransaction(), pendingKeys...)

	f.api.EXPECT().AuthorizationFail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *engine.AuthorizationFailRequest) (*engine.AuthorizationResultResponse, error) {
			assert.Equal(t, engine.ReasonNotAuthenticated, req.Reason)
			return &engine.AuthorizationResultResponse{Action: engine.AuthorizationResultBadRequest}, nil
		})

	rec := f.do(decisionRequestFor(cookie, url.Values{"authorized": {"true"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecision_Authorized(t *testing.T) {
	t.Parallel()

	t.Run("with submitted credentials", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		cookie := f.seedSession(t, pendingTransaction(), pendingKeys...)

		f.users.EXPECT().Authenticate(gomock.Any(), "john", "secret").Return(testUser, nil)
		f.api.EXPECT().AuthorizationIssue(gomock.Any(), &engine.AuthorizationIssueRequest{
			Ticket:   "ticket-1",
			Subject:  testUser.Subject,
			AuthTime: testNow.Unix(),
			Claims:   `{"name":"John Smith"}`,
		}).Return(&engine.AuthorizationResultResponse{
			Action:          engine.AuthorizationResultLocation,
			ResponseContent: clientRedirect + "?code=abc",
		}, nil)

		rec := f.do(decisionRequestFor(cookie, url.Values{
			"authorized": {"true"}, "loginId": {"john"}, "password": {"secret"},
		}))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, clientRedirect+"?code=abc", rec.Header().Get("Location"))

		v := f.sessionValues(t, cookie)
		require.NotNil(t, v.User)
		assert.Equal(t, testUser.Subject, v.User.Subject)
		assert.Equal(t, testNow.Unix(), v.AuthTime)
		assert.Empty(t, v.Ticket)
		assert.Nil(t, v.Client)
		assert.Nil(t, v.ClaimNames)
	})

	t.Run("with the signed in user", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		authTime := testNow.Add(-5 * time.Minute).Unix()
		pending := pendingTransaction()
		pending.User = testUser
		pending.AuthTime = authTime
		pending.ClaimNames = nil
		cookie := f.seedSession(t, pending,
			session.KeyTicket, session.KeyClient, session.KeyUser, session.KeyAuthTime)

		f.api.EXPECT().AuthorizationIssue(gomock.Any(), &engine.AuthorizationIssueRequest{
			Ticket:   "ticket-1",
			Subject:  testUser.Subject,
			AuthTime: authTime,
		}).Return(&engine.AuthorizationResultResponse{
			Action:          engine.AuthorizationResultForm,
			ResponseContent: "<html>form_post</html>",
		}, nil)

		rec := f.do(decisionRequestFor(cookie, url.Values{"authorized": {"true"}}))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<html>form_post</html>", rec.Body.String())
	})

	t.Run("ticket is single use", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		cookie := f.seedSession(t, pendingTransaction(), pendingKeys...)

		f.api.EXPECT().AuthorizationFail(gomock.Any(), gomock.Any()).Return(&engine.AuthorizationResultResponse{
			Action:          engine.AuthorizationResultLocation,
			ResponseContent: clientRedirect,
		}, nil).Times(1)

		first := f.do(decisionRequestFor(cookie, url.Values{"denied": {"true"}}))
		assert.Equal(t, http.StatusFound, first.Code)

		second := f.do(decisionRequestFor(cookie, url.Values{"denied": {"true"}}))
		assert.Equal(t, http.StatusBadRequest, second.Code)
	})
}
