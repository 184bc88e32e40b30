// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ory/fosite"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/subject"
	"github.com/stacklok/authfront/pkg/users"
)

// passwordGrant completes a resource owner password credentials grant
// (RFC 6749 §4.3) the engine delegated to the adapter.
func (h *Handler) passwordGrant(ctx context.Context, resp *engine.TokenResponse) (*response.Response, error) {
	nonce := resp.DPoPNonce
	if resp.Username == "" || resp.Password == "" {
		return nil, withNonce(response.ValidationError("Username and password are required"), nonce)
	}
	if resp.Ticket == "" {
		return nil, withNonce(response.ValidationError("Ticket is required"), nonce)
	}

	user, err := h.users.Authenticate(ctx, resp.Username, resp.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		return nil, h.rejectCredentials(ctx, resp.Ticket, nonce)
	}
	if err != nil {
		return nil, err
	}

	issued, err := h.api.TokenIssue(ctx, &engine.TokenIssueRequest{Ticket: resp.Ticket, Subject: user.Subject})
	if err != nil {
		return nil, err
	}
	return h.buildTokenIssue(ctx, issued, nonce)
}

// rejectCredentials reports invalid resource owner credentials to the engine
// and returns its answer as a decided response.
func (h *Handler) rejectCredentials(ctx context.Context, ticket, nonce string) error {
	failed, err := h.api.TokenFail(ctx, &engine.TokenFailRequest{
		Ticket: ticket,
		Reason: engine.TokenFailReasonInvalidResourceOwnerCredentials,
	})
	if err != nil {
		return err
	}
	out, err := h.tokenFailResponse(ctx, failed, nonce)
	if err != nil {
		return err
	}
	return response.NewError(response.KindCredential,
		string(engine.TokenFailReasonInvalidResourceOwnerCredentials), out)
}

// tokenExchangeGrant creates the token of an RFC 8693 token exchange for the
// subject of the presented subject token.
func (h *Handler) tokenExchangeGrant(ctx context.Context, resp *engine.TokenResponse) (*response.Response, error) {
	if err := requireClient(resp); err != nil {
		return nil, err
	}
	sub, err := exchangeSubject(resp)
	if err != nil {
		return nil, withNonce(response.SubjectResolutionError(err.Error()), resp.DPoPNonce)
	}
	return h.createToken(ctx, engine.GrantTypeTokenExchange, resp, sub)
}

// jwtBearerGrant creates the token of an RFC 7523 JWT bearer grant for the
// subject of the assertion.
func (h *Handler) jwtBearerGrant(ctx context.Context, resp *engine.TokenResponse) (*response.Response, error) {
	if err := requireClient(resp); err != nil {
		return nil, err
	}
	sub, err := subject.UnverifiedJWTSubject(resp.Assertion)
	if err != nil {
		return nil, withNonce(response.SubjectResolutionError(
			fmt.Sprintf("cannot determine the subject of the assertion: %v", err)), resp.DPoPNonce)
	}
	return h.createToken(ctx, engine.GrantTypeJWTBearer, resp, sub)
}

// requireClient rejects grants from clients the engine could not identify.
func requireClient(resp *engine.TokenResponse) error {
	if resp.ClientID != 0 {
		return nil
	}
	msg := "an unidentified client is not allowed to use this grant type"
	return response.NewError(response.KindValidation, msg,
		response.OAuthError(fosite.ErrUnauthorizedClient, msg).WithDPoPNonce(resp.DPoPNonce))
}

// exchangeSubject resolves the subject of a token exchange from its subject
// token. Opaque tokens rely on what the engine resolved; JWTs are decoded.
func exchangeSubject(resp *engine.TokenResponse) (string, error) {
	switch resp.SubjectTokenType.Normalize() {
	case engine.TokenTypeAccessToken, engine.TokenTypeRefreshToken:
		info := resp.SubjectTokenInfo
		if info == nil {
			return "", errors.New("subject token info is missing")
		}
		if info.Subject == "" {
			return "", errors.New("subject is missing in the token info")
		}
		return info.Subject, nil
	case engine.TokenTypeJWT, engine.TokenTypeIDToken:
		sub, err := subject.UnverifiedJWTSubject(resp.SubjectToken)
		if err != nil {
			return "", fmt.Errorf("cannot determine the subject of the subject token: %w", err)
		}
		return sub, nil
	default:
		return "", fmt.Errorf("unsupported subject token type %q", string(resp.SubjectTokenType))
	}
}

// createToken asks the engine to mint a token for sub and renders it as a
// token response.
func (h *Handler) createToken(
	ctx context.Context, grant engine.GrantType, resp *engine.TokenResponse, sub string,
) (*response.Response, error) {
	created, err := h.api.TokenCreate(ctx, &engine.TokenCreateRequest{
		GrantType: grant,
		ClientID:  resp.ClientID,
		Subject:   sub,
		Scopes:    resp.Scopes,
		Resources: resp.Resources,
	})
	if err != nil {
		return nil, err
	}
	return h.buildTokenCreate(ctx, grant, created, resp.DPoPNonce)
}

// tokenBody is the token response of RFC 6749 §5.1 and RFC 8693 §2.2.1.
type tokenBody struct {
	AccessToken     string `json:"access_token"`
	IssuedTokenType string `json:"issued_token_type,omitempty"`
	TokenType       string `json:"token_type"`
	ExpiresIn       int64  `json:"expires_in,omitempty"`
	Scope           string `json:"scope,omitempty"`
	RefreshToken    string `json:"refresh_token,omitempty"`
}

func (h *Handler) buildTokenCreate(
	ctx context.Context, grant engine.GrantType, resp *engine.TokenCreateResponse, nonce string,
) (*response.Response, error) {
	content := response.ErrorBody(fosite.ErrServerError.ErrorField, resp.ResultMessage)

	switch resp.Action {
	case engine.TokenCreateOK:
		body := tokenBody{
			AccessToken:  resp.AccessToken,
			TokenType:    resp.TokenType,
			ExpiresIn:    resp.ExpiresIn,
			Scope:        strings.Join(resp.Scopes, " "),
			RefreshToken: resp.RefreshToken,
		}
		if body.TokenType == "" {
			body.TokenType = "Bearer"
		}
		if grant == engine.GrantTypeTokenExchange {
			body.IssuedTokenType = engine.IssuedTokenTypeAccessToken
		}
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode token response: %w", err)
		}
		return response.OK(string(b)).WithDPoPNonce(nonce), nil
	case engine.TokenCreateBadRequest:
		return nil, engineFailure(PathToken, resp.Action,
			response.OAuthError(fosite.ErrInvalidRequest, resp.ResultMessage).WithDPoPNonce(nonce))
	case engine.TokenCreateForbidden:
		return nil, engineFailure(PathToken, resp.Action,
			response.Forbidden(response.ErrorBody(fosite.ErrUnauthorizedClient.ErrorField, resp.ResultMessage)).
				WithDPoPNonce(nonce))
	case engine.TokenCreateInternalServerError:
		return nil, engineFailure(PathToken, resp.Action, response.InternalServerError(content).WithDPoPNonce(nonce))
	default:
		return nil, h.unknownAction(ctx, PathToken, string(resp.Action))
	}
}

// withNonce attaches the DPoP nonce to the response of a decided error.
func withNonce(err *response.ResponseError, nonce string) *response.ResponseError {
	err.Response.WithDPoPNonce(nonce)
	return err
}
