// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package engine describes the remote authorization-decision engine: the
// request and response shapes of its APIs, the closed action sets each API
// answers with, and an HTTP client for it.
//
// The engine owns every authorization decision and all ticket and pushed
// request state. The adapter only translates between HTTP and these APIs.
package engine

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks -source=api.go API

import "context"

// API is the set of engine operations used by the adapter.
type API interface {
	PushedAuthorization(ctx context.Context, req *PushedAuthReqRequest) (*PushedAuthReqResponse, error)
	Authorization(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResponse, error)
	AuthorizationIssue(ctx context.Context, req *AuthorizationIssueRequest) (*AuthorizationResultResponse, error)
	AuthorizationFail(ctx context.Context, req *AuthorizationFailRequest) (*AuthorizationResultResponse, error)
	Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error)
	TokenIssue(ctx context.Context, req *TokenIssueRequest) (*TokenIssueResponse, error)
	TokenFail(ctx context.Context, req *TokenFailRequest) (*TokenFailResponse, error)
	TokenCreate(ctx context.Context, req *TokenCreateRequest) (*TokenCreateResponse, error)
	Introspection(ctx context.Context, req *IntrospectionRequest) (*IntrospectionResponse, error)
	Revocation(ctx context.Context, req *RevocationRequest) (*RevocationResponse, error)
	UserInfo(ctx context.Context, req *UserInfoRequest) (*UserInfoResponse, error)
	UserInfoIssue(ctx context.Context, req *UserInfoIssueRequest) (*UserInfoIssueResponse, error)
	CredentialIssuerMetadata(ctx context.Context, req *CredentialMetadataRequest) (*CredentialMetadataResponse, error)
	Configuration(ctx context.Context) (RawDocument, error)
	JWKS(ctx context.Context) (RawDocument, error)
}
