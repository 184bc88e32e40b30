// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

// tokenChallenge is sent with 401 answers of the token endpoint.
const tokenChallenge = `Basic realm="token"`

func (h *Handler) tokenEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathToken, h.translateToken, h.api.Token, h.buildToken)
}

func (h *Handler) translateToken(r *http.Request) (*engine.TokenRequest, error) {
	p, err := h.readParams(r, false)
	if err != nil {
		return nil, err
	}
	auth, err := h.clientAuth(r, p)
	if err != nil {
		return nil, err
	}
	return &engine.TokenRequest{
		Parameters: p.raw,
		ClientAuth: auth,
		DPoPInput:  h.dpop(r),
	}, nil
}

func (h *Handler) buildToken(ctx context.Context, resp *engine.TokenResponse) (*response.Response, error) {
	content := resp.ResponseContent
	nonce := resp.DPoPNonce

	switch resp.Action {
	case engine.TokenOK, engine.TokenIDTokenReissuable:
		return response.OK(content).WithDPoPNonce(nonce), nil
	case engine.TokenBadRequest:
		return nil, engineFailure(PathToken, resp.Action, response.BadRequest(content).WithDPoPNonce(nonce))
	case engine.TokenInvalidClient:
		return nil, engineFailure(PathToken, resp.Action,
			response.Unauthorized(content, tokenChallenge).WithDPoPNonce(nonce))
	case engine.TokenInternalServerError:
		return nil, engineFailure(PathToken, resp.Action, response.InternalServerError(content).WithDPoPNonce(nonce))
	case engine.TokenPassword:
		return h.passwordGrant(ctx, resp)
	case engine.TokenTokenExchange:
		return h.tokenExchangeGrant(ctx, resp)
	case engine.TokenJWTBearer:
		return h.jwtBearerGrant(ctx, resp)
	default:
		return nil, h.unknownAction(ctx, PathToken, string(resp.Action))
	}
}

// buildTokenIssue dispatches the answer of the token issue API. tokenNonce is
// the nonce of the preceding token call, echoed when the issue answer has none.
func (h *Handler) buildTokenIssue(
	ctx context.Context, resp *engine.TokenIssueResponse, tokenNonce string,
) (*response.Response, error) {
	content := resp.ResponseContent
	nonce := resp.DPoPNonce
	if nonce == "" {
		nonce = tokenNonce
	}

	switch resp.Action {
	case engine.TokenIssueOK:
		return response.OK(content).WithDPoPNonce(nonce), nil
	case engine.TokenIssueInvalidTicket:
		// The ticket came from the engine moments ago; losing it is a
		// server-side inconsistency, not a client error.
		return nil, engineFailure(PathToken, resp.Action, response.InternalServerError(content).WithDPoPNonce(nonce))
	case engine.TokenIssueInternalServerError:
		return nil, engineFailure(PathToken, resp.Action, response.InternalServerError(content).WithDPoPNonce(nonce))
	default:
		return nil, h.unknownAction(ctx, PathToken, string(resp.Action))
	}
}

// tokenFailResponse dispatches the answer of the token fail API. Known
// actions yield the response to send; unknown ones an error.
func (h *Handler) tokenFailResponse(
	ctx context.Context, resp *engine.TokenFailResponse, nonce string,
) (*response.Response, error) {
	switch resp.Action {
	case engine.TokenFailBadRequest:
		return response.BadRequest(resp.ResponseContent).WithDPoPNonce(nonce), nil
	case engine.TokenFailInternalServerError:
		return response.InternalServerError(resp.ResponseContent).WithDPoPNonce(nonce), nil
	default:
		return nil, h.unknownAction(ctx, PathToken, string(resp.Action))
	}
}
