// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"errors"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/users"
)

// decisionRequest is the end user's answer on the consent page.
type decisionRequest struct {
	authorized bool
	loginID    string
	password   string
}

func (h *Handler) decisionEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathDecision, h.translateDecision, h.decide, h.buildDecision)
}

func (h *Handler) translateDecision(r *http.Request) (*decisionRequest, error) {
	p, err := h.readParams(r, false)
	if err != nil {
		return nil, err
	}
	return &decisionRequest{
		authorized: p.values.Get("authorized") == "true" && p.values.Get("denied") == "",
		loginID:    p.values.Get("loginId"),
		password:   p.values.Get("password"),
	}, nil
}

// decide consumes the pending transaction of the session and reports the
// user's decision to the engine, authenticating the user first when
// credentials were submitted.
func (h *Handler) decide(ctx context.Context, req *decisionRequest) (*engine.AuthorizationResultResponse, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return nil, errNoSession
	}

	v, err := s.GetBatch(ctx, session.AllKeys...)
	if err != nil {
		return nil, err
	}
	if v.Ticket == "" {
		return nil, response.ValidationError("Ticket is required")
	}
	// The ticket is single use whatever the outcome.
	if err := s.DeleteBatch(ctx,
		session.KeyTicket, session.KeyClaimNames, session.KeyClaimLocales, session.KeyClient); err != nil {
		return nil, err
	}

	if !req.authorized {
		return h.failAuthorization(ctx, v.Ticket, engine.ReasonDenied, "The end-user denied the authorization request")
	}

	user, authTime, err := h.authenticate(ctx, s, req, v)
	if errors.Is(err, users.ErrInvalidCredentials) {
		return h.failAuthorization(ctx, v.Ticket, engine.ReasonNotAuthenticated, "The end-user could not be authenticated")
	}
	if err != nil {
		return nil, err
	}

	return h.issueAuthorization(ctx, &authorizationGrant{
		ticket:     v.Ticket,
		user:       user,
		authTime:   authTime,
		client:     v.Client,
		claimNames: v.ClaimNames,
	})
}

// authenticate returns the user the decision is made for: the one whose
// credentials were submitted, stored as the new session identity, or else the
// one already signed in.
func (h *Handler) authenticate(
	ctx context.Context, s *session.Session, req *decisionRequest, v *session.Values,
) (*users.User, int64, error) {
	if req.loginID == "" {
		if v.User == nil {
			return nil, 0, users.ErrInvalidCredentials
		}
		return v.User, v.AuthTime, nil
	}

	user, err := h.users.Authenticate(ctx, req.loginID, req.password)
	if err != nil {
		return nil, 0, err
	}
	authTime := h.now().Unix()
	if err := s.SetBatch(ctx, &session.Values{User: user, AuthTime: authTime},
		session.KeyUser, session.KeyAuthTime); err != nil {
		return nil, 0, err
	}
	return user, authTime, nil
}

func (h *Handler) buildDecision(ctx context.Context, resp *engine.AuthorizationResultResponse) (*response.Response, error) {
	return h.buildAuthorizationResult(ctx, PathDecision, resp)
}
