// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/authfront/pkg/claims"
	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/subject"
	"github.com/stacklok/authfront/pkg/users"
)

// missingTokenChallenge is sent when a userinfo request carries no access token.
const missingTokenChallenge = `Bearer error="invalid_token",error_description="An access token must be provided"`

func (h *Handler) userInfoEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathUserInfo, h.translateUserInfo, h.api.UserInfo, h.buildUserInfo)
}

func (h *Handler) translateUserInfo(r *http.Request) (*engine.UserInfoRequest, error) {
	var p *params
	if r.Method == http.MethodPost {
		var err error
		if p, err = h.readParams(r, false); err != nil {
			return nil, err
		}
	} else if r.Method != http.MethodGet {
		return nil, methodNotAllowed(r.Method)
	}

	token := accessToken(r, p)
	if token == "" {
		return nil, response.NewError(response.KindValidation, "access token is missing",
			response.Challenge(http.StatusUnauthorized, missingTokenChallenge))
	}
	cert, _, err := h.clientCertificate(r)
	if err != nil {
		return nil, err
	}
	return &engine.UserInfoRequest{
		Token:             token,
		ClientCertificate: cert,
		DPoPInput:         h.dpop(r),
	}, nil
}

// buildUserInfo dispatches the userinfo answer. The engine's content of a
// failure is the WWW-Authenticate challenge to send.
func (h *Handler) buildUserInfo(ctx context.Context, resp *engine.UserInfoResponse) (*response.Response, error) {
	content := resp.ResponseContent
	nonce := resp.DPoPNonce

	var status int
	switch resp.Action {
	case engine.UserInfoOK:
		return h.issueUserInfo(ctx, resp)
	case engine.UserInfoBadRequest:
		status = http.StatusBadRequest
	case engine.UserInfoUnauthorized:
		status = http.StatusUnauthorized
	case engine.UserInfoForbidden:
		status = http.StatusForbidden
	case engine.UserInfoInternalServerError:
		status = http.StatusInternalServerError
	default:
		return nil, h.unknownAction(ctx, PathUserInfo, string(resp.Action))
	}
	return nil, engineFailure(PathUserInfo, resp.Action, response.Challenge(status, content).WithDPoPNonce(nonce))
}

// issueUserInfo collects the requested claims of the token's subject and
// has the engine render the userinfo response.
func (h *Handler) issueUserInfo(ctx context.Context, resp *engine.UserInfoResponse) (*response.Response, error) {
	req := &engine.UserInfoIssueRequest{Token: resp.Token}
	if sub, ok := subject.Pairwise(resp.Subject, resp.Client); ok {
		req.Sub = sub
	}

	user, err := h.users.Lookup(ctx, resp.Subject)
	switch {
	case errors.Is(err, users.ErrNotFound):
		h.logger.DebugContext(ctx, "userinfo subject has no profile", "subject", resp.Subject)
	case err != nil:
		return nil, err
	default:
		collected, err := claims.Encode(h.claims.Collect(resp.Claims, user))
		if err != nil {
			return nil, fmt.Errorf("failed to encode claims: %w", err)
		}
		req.Claims = collected
	}

	issued, err := h.api.UserInfoIssue(ctx, req)
	if err != nil {
		return nil, err
	}
	return h.buildUserInfoIssue(ctx, issued)
}

func (h *Handler) buildUserInfoIssue(ctx context.Context, resp *engine.UserInfoIssueResponse) (*response.Response, error) {
	content := resp.ResponseContent
	nonce := resp.DPoPNonce

	var status int
	switch resp.Action {
	case engine.UserInfoIssueJSON:
		return response.OK(content).WithDPoPNonce(nonce), nil
	case engine.UserInfoIssueJWT:
		return response.New(http.StatusOK, response.ContentTypeJWT, content).WithDPoPNonce(nonce), nil
	case engine.UserInfoIssueBadRequest:
		status = http.StatusBadRequest
	case engine.UserInfoIssueUnauthorized:
		status = http.StatusUnauthorized
	case engine.UserInfoIssueForbidden:
		status = http.StatusForbidden
	case engine.UserInfoIssueInternalServerError:
		status = http.StatusInternalServerError
	default:
		return nil, h.unknownAction(ctx, PathUserInfo, string(resp.Action))
	}
	return nil, engineFailure(PathUserInfo, resp.Action, response.Challenge(status, content).WithDPoPNonce(nonce))
}
