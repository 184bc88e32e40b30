// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/ory/fosite"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

const introspectionChallenge = `Basic realm="introspection"`

func (h *Handler) introspectionEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathIntrospection, h.translateIntrospection, h.api.Introspection, h.buildIntrospection)
}

func (h *Handler) translateIntrospection(r *http.Request) (*engine.IntrospectionRequest, error) {
	if err := h.authenticateResourceServer(r); err != nil {
		return nil, err
	}
	p, err := h.readParams(r, false)
	if err != nil {
		return nil, err
	}
	return &engine.IntrospectionRequest{
		Parameters:       p.raw,
		HTTPAcceptHeader: r.Header.Get(headerAccept),
		DPoPInput:        h.dpop(r),
	}, nil
}

// authenticateResourceServer checks the Basic credentials of the caller
// against the configured resource servers. Without configured resource
// servers the endpoint is open.
func (h *Handler) authenticateResourceServer(r *http.Request) error {
	if len(h.resourceServers) == 0 {
		return nil
	}
	id, secret, ok := basicAuth(r)
	if ok {
		if want, known := h.resourceServers[id]; known &&
			subtle.ConstantTimeCompare([]byte(want), []byte(secret)) == 1 {
			return nil
		}
	}
	msg := "resource server authentication failed"
	return response.NewError(response.KindValidation, msg,
		response.Unauthorized(response.ErrorBody(fosite.ErrInvalidClient.ErrorField, msg), introspectionChallenge))
}

func (h *Handler) buildIntrospection(ctx context.Context, resp *engine.IntrospectionResponse) (*response.Response, error) {
	content := resp.ResponseContent
	nonce := resp.DPoPNonce

	switch resp.Action {
	case engine.IntrospectionOK:
		return response.OK(content).WithDPoPNonce(nonce), nil
	case engine.IntrospectionJWT:
		return response.New(http.StatusOK, response.ContentTypeIntrospectionJWT, content).WithDPoPNonce(nonce), nil
	case engine.IntrospectionBadRequest:
		return nil, engineFailure(PathIntrospection, resp.Action, response.BadRequest(content).WithDPoPNonce(nonce))
	case engine.IntrospectionInternalServerError:
		return nil, engineFailure(PathIntrospection, resp.Action,
			response.InternalServerError(content).WithDPoPNonce(nonce))
	default:
		return nil, h.unknownAction(ctx, PathIntrospection, string(resp.Action))
	}
}
