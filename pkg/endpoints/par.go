// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

func (h *Handler) pushedAuthReqEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathPushedAuthReq, h.translatePushedAuthReq, h.api.PushedAuthorization, h.buildPushedAuthReq)
}

func (h *Handler) translatePushedAuthReq(r *http.Request) (*engine.PushedAuthReqRequest, error) {
	p, err := h.readParams(r, false)
	if err != nil {
		return nil, err
	}
	auth, err := h.clientAuth(r, p)
	if err != nil {
		return nil, err
	}
	return &engine.PushedAuthReqRequest{
		Parameters: p.raw,
		ClientAuth: auth,
		DPoPInput:  h.dpop(r),
	}, nil
}

func (h *Handler) buildPushedAuthReq(ctx context.Context, resp *engine.PushedAuthReqResponse) (*response.Response, error) {
	content := resp.ResponseContent
	var out *response.Response

	switch resp.Action {
	case engine.PushedAuthReqCreated:
		return response.Created(content).WithDPoPNonce(resp.DPoPNonce), nil
	case engine.PushedAuthReqBadRequest:
		out = response.BadRequest(content)
	case engine.PushedAuthReqUnauthorized:
		out = response.Unauthorized(content, "")
	case engine.PushedAuthReqForbidden:
		out = response.Forbidden(content)
	case engine.PushedAuthReqPayloadTooLarge:
		out = response.PayloadTooLarge(content)
	case engine.PushedAuthReqInternalServerError:
		out = response.InternalServerError(content)
	default:
		return nil, h.unknownAction(ctx, PathPushedAuthReq, string(resp.Action))
	}
	return nil, engineFailure(PathPushedAuthReq, resp.Action, out.WithDPoPNonce(resp.DPoPNonce))
}
