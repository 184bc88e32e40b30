// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"net/http"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

// noParams is the translated form of requests that carry nothing the engine needs.
type noParams struct{}

func translateNothing(r *http.Request) (noParams, error) {
	if r.Method != http.MethodGet {
		return noParams{}, methodNotAllowed(r.Method)
	}
	return noParams{}, nil
}

func (h *Handler) discoveryEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathDiscovery, translateNothing,
		func(ctx context.Context, _ noParams) (engine.RawDocument, error) { return h.api.Configuration(ctx) },
		buildDocument)
}

func (h *Handler) jwksEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathJWKS, translateNothing,
		func(ctx context.Context, _ noParams) (engine.RawDocument, error) { return h.api.JWKS(ctx) },
		buildDocument)
}

// buildDocument forwards a raw engine document.
func buildDocument(_ context.Context, doc engine.RawDocument) (*response.Response, error) {
	return response.New(http.StatusOK, response.ContentTypeJSON, string(doc)), nil
}

func (h *Handler) credentialMetadataEndpoint() (http.Handler, error) {
	return newEndpoint(h, PathCredentialMetadata, h.translateCredentialMetadata,
		h.api.CredentialIssuerMetadata, h.buildCredentialMetadata)
}

func (h *Handler) translateCredentialMetadata(r *http.Request) (*engine.CredentialMetadataRequest, error) {
	if r.Method != http.MethodGet {
		return nil, methodNotAllowed(r.Method)
	}
	return &engine.CredentialMetadataRequest{Pretty: h.credentialPretty}, nil
}

func (h *Handler) buildCredentialMetadata(
	ctx context.Context, resp *engine.CredentialMetadataResponse,
) (*response.Response, error) {
	content := resp.ResponseContent

	switch resp.Action {
	case engine.CredentialMetadataOK:
		return response.OK(content), nil
	case engine.CredentialMetadataNotFound:
		return nil, engineFailure(PathCredentialMetadata, resp.Action, response.NotFound(content))
	case engine.CredentialMetadataInternalServerError:
		return nil, engineFailure(PathCredentialMetadata, resp.Action, response.InternalServerError(content))
	default:
		return nil, h.unknownAction(ctx, PathCredentialMetadata, string(resp.Action))
	}
}
