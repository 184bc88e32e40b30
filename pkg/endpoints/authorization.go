// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/session"
)

var errNoSession = errors.New("no session is bound to the request")

func (h *Handler) authorizationEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathAuthorization, h.translateAuthorization, h.api.Authorization, h.buildAuthorization)
}

func (h *Handler) translateAuthorization(r *http.Request) (*engine.AuthorizationRequest, error) {
	p, err := h.readParams(r, true)
	if err != nil {
		return nil, err
	}
	return &engine.AuthorizationRequest{Parameters: p.raw}, nil
}

func (h *Handler) buildAuthorization(ctx context.Context, resp *engine.AuthorizationResponse) (*response.Response, error) {
	content := resp.ResponseContent

	switch resp.Action {
	case engine.AuthorizationInternalServerError:
		return nil, engineFailure(PathAuthorization, resp.Action,
			response.InternalServerError(content).WithDPoPNonce(resp.DPoPNonce))
	case engine.AuthorizationBadRequest:
		return nil, engineFailure(PathAuthorization, resp.Action,
			response.BadRequest(content).WithDPoPNonce(resp.DPoPNonce))
	case engine.AuthorizationLocation:
		return response.Location(content).WithDPoPNonce(resp.DPoPNonce), nil
	case engine.AuthorizationForm:
		return response.Form(content).WithDPoPNonce(resp.DPoPNonce), nil
	case engine.AuthorizationInteraction:
		return h.interaction(ctx, resp)
	case engine.AuthorizationNoInteraction:
		return h.resolveNoInteraction(ctx, resp)
	default:
		return nil, h.unknownAction(ctx, PathAuthorization, string(resp.Action))
	}
}

// interaction stores the pending transaction in the session and renders the
// consent page.
func (h *Handler) interaction(ctx context.Context, resp *engine.AuthorizationResponse) (*response.Response, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return nil, errNoSession
	}

	v, err := s.GetBatch(ctx, session.KeyUser, session.KeyAuthTime)
	if err != nil {
		return nil, err
	}
	purged, err := h.purgeStaleIdentity(ctx, s, resp, v)
	if err != nil {
		return nil, err
	}
	if purged {
		v.User = nil
	}

	pending := &session.Values{
		Ticket:       resp.Ticket,
		ClaimNames:   resp.Claims,
		ClaimLocales: resp.ClaimsLocales,
		Client:       resp.Client,
	}
	if err := s.SetBatch(ctx, pending,
		session.KeyTicket, session.KeyClaimNames, session.KeyClaimLocales, session.KeyClient); err != nil {
		return nil, err
	}

	page := &ConsentPage{
		Scopes:    resp.Scopes,
		Claims:    resp.Claims,
		LoginHint: resp.LoginHint,
	}
	if resp.Client != nil {
		page.ClientName = resp.Client.ClientName
	}
	// A user other than the one the request is bound to must sign in again.
	if v.User != nil && (resp.Subject == "" || resp.Subject == v.User.Subject) {
		page.User = v.User
	}

	html, err := h.consent.Render(page)
	if err != nil {
		return nil, fmt.Errorf("failed to render consent page: %w", err)
	}
	return response.Form(html).WithDPoPNonce(resp.DPoPNonce), nil
}

// purgeStaleIdentity removes the signed-in user from the session when the
// request forces a login or the authentication is older than the requested
// maximum age, so that a later login cannot be short-circuited by it.
func (h *Handler) purgeStaleIdentity(
	ctx context.Context, s *session.Session, resp *engine.AuthorizationResponse, v *session.Values,
) (bool, error) {
	if v.User == nil {
		return false, nil
	}
	if !resp.HasPrompt(engine.PromptLogin) && !h.authAgeExceeded(resp.MaxAge, v) {
		return false, nil
	}
	if err := s.DeleteBatch(ctx, session.KeyUser, session.KeyAuthTime); err != nil {
		return false, err
	}
	return true, nil
}

// authAgeExceeded reports whether the session authentication is older than
// maxAge seconds. An unknown authentication time counts as too old.
func (h *Handler) authAgeExceeded(maxAge int64, v *session.Values) bool {
	if maxAge <= 0 {
		return false
	}
	if v.AuthTime == 0 {
		return true
	}
	return h.now().Unix() > v.AuthTime+maxAge
}

// buildAuthorizationResult dispatches the answer of the authorization issue
// and fail APIs.
func (h *Handler) buildAuthorizationResult(
	ctx context.Context, path string, resp *engine.AuthorizationResultResponse,
) (*response.Response, error) {
	content := resp.ResponseContent

	switch resp.Action {
	case engine.AuthorizationResultInternalServerError:
		return nil, engineFailure(path, resp.Action, response.InternalServerError(content))
	case engine.AuthorizationResultBadRequest:
		return nil, engineFailure(path, resp.Action, response.BadRequest(content))
	case engine.AuthorizationResultLocation:
		return response.Location(content), nil
	case engine.AuthorizationResultForm:
		return response.Form(content), nil
	default:
		return nil, h.unknownAction(ctx, path, string(resp.Action))
	}
}
