// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

const revocationChallenge = `Basic realm="revocation"`

func (h *Handler) revocationEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathRevocation, h.translateRevocation, h.api.Revocation, h.buildRevocation)
}

func (h *Handler) translateRevocation(r *http.Request) (*engine.RevocationRequest, error) {
	p, err := h.readParams(r, false)
	if err != nil {
		return nil, err
	}
	auth, err := h.clientAuth(r, p)
	if err != nil {
		return nil, err
	}
	return &engine.RevocationRequest{Parameters: p.raw, ClientAuth: auth}, nil
}

func (h *Handler) buildRevocation(ctx context.Context, resp *engine.RevocationResponse) (*response.Response, error) {
	content := resp.ResponseContent

	switch resp.Action {
	case engine.RevocationOK:
		return response.OK(content), nil
	case engine.RevocationBadRequest:
		return nil, engineFailure(PathRevocation, resp.Action, response.BadRequest(content))
	case engine.RevocationInvalidClient:
		return nil, engineFailure(PathRevocation, resp.Action, response.Unauthorized(content, revocationChallenge))
	case engine.RevocationInternalServerError:
		return nil, engineFailure(PathRevocation, resp.Action, response.InternalServerError(content))
	default:
		return nil, h.unknownAction(ctx, PathRevocation, string(resp.Action))
	}
}
