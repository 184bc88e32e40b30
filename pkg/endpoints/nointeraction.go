// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"fmt"

	"github.com/stacklok/authfront/pkg/claims"
	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/subject"
	"github.com/stacklok/authfront/pkg/users"
)

// noInteractionCheck inspects one condition of a silent authorization. It
// returns the fail reason and true when the condition is not met.
type noInteractionCheck func(h *Handler, resp *engine.AuthorizationResponse, v *session.Values) (
	engine.AuthorizationFailReason, bool)

// noInteractionChecks run in order; the first failure decides.
var noInteractionChecks = []noInteractionCheck{
	checkPrompts,
	checkLoggedIn,
	checkAuthAge,
	checkSubject,
}

// checkPrompts fails whenever the request demands an interactive login or
// account selection, even for a valid session.
func checkPrompts(_ *Handler, resp *engine.AuthorizationResponse, _ *session.Values) (engine.AuthorizationFailReason, bool) {
	if resp.HasPrompt(engine.PromptLogin) || resp.HasPrompt(engine.PromptSelectAccount) {
		return engine.ReasonNotLoggedIn, true
	}
	return "", false
}

func checkLoggedIn(_ *Handler, _ *engine.AuthorizationResponse, v *session.Values) (engine.AuthorizationFailReason, bool) {
	if v.User == nil {
		return engine.ReasonNotLoggedIn, true
	}
	return "", false
}

func checkAuthAge(h *Handler, resp *engine.AuthorizationResponse, v *session.Values) (engine.AuthorizationFailReason, bool) {
	if h.authAgeExceeded(resp.MaxAge, v) {
		return engine.ReasonExceedsMaxAge, true
	}
	return "", false
}

// checkSubject fails when the engine bound the request to a subject other
// than the signed-in user, e.g. through id_token_hint.
func checkSubject(_ *Handler, resp *engine.AuthorizationResponse, v *session.Values) (engine.AuthorizationFailReason, bool) {
	if resp.Subject != "" && resp.Subject != v.User.Subject {
		return engine.ReasonDifferentSubject, true
	}
	return "", false
}

// resolveNoInteraction completes an authorization the engine can decide
// without user interaction, provided the session passes every local check.
// Either way the answer is the final response of the authorization.
func (h *Handler) resolveNoInteraction(ctx context.Context, resp *engine.AuthorizationResponse) (*response.Response, error) {
	v := &session.Values{}
	if s, ok := session.FromContext(ctx); ok {
		loaded, err := s.GetBatch(ctx, session.KeyUser, session.KeyAuthTime)
		if err != nil {
			return nil, err
		}
		v = loaded
		// Only the stored identity is purged; the checks below still see it
		// so that the precise fail reason is reported.
		if _, err := h.purgeStaleIdentity(ctx, s, resp, v); err != nil {
			return nil, err
		}
	}

	var (
		result *engine.AuthorizationResultResponse
		err    error
	)
	if reason, failed := runNoInteractionChecks(h, resp, v); failed {
		h.logger.DebugContext(ctx, "silent authorization rejected", "reason", reason)
		result, err = h.failAuthorization(ctx, resp.Ticket, reason, "")
	} else {
		result, err = h.issueAuthorization(ctx, &authorizationGrant{
			ticket:     resp.Ticket,
			user:       v.User,
			authTime:   v.AuthTime,
			client:     resp.Client,
			claimNames: resp.Claims,
		})
	}
	if err != nil {
		return nil, err
	}
	return h.buildAuthorizationResult(ctx, PathAuthorization, result)
}

func runNoInteractionChecks(
	h *Handler, resp *engine.AuthorizationResponse, v *session.Values,
) (engine.AuthorizationFailReason, bool) {
	for _, check := range noInteractionChecks {
		if reason, failed := check(h, resp, v); failed {
			return reason, true
		}
	}
	return "", false
}

// authorizationGrant is what the authorization issue API needs to know about
// an approved transaction.
type authorizationGrant struct {
	ticket     string
	user       *users.User
	authTime   int64
	client     *engine.Client
	claimNames []string
}

// issueAuthorization approves the transaction for the grant's user,
// presenting the pairwise subject when the client uses one.
func (h *Handler) issueAuthorization(
	ctx context.Context, g *authorizationGrant,
) (*engine.AuthorizationResultResponse, error) {
	req := &engine.AuthorizationIssueRequest{
		Ticket:   g.ticket,
		Subject:  g.user.Subject,
		AuthTime: g.authTime,
	}
	if sub, ok := subject.Pairwise(g.user.Subject, g.client); ok {
		req.Sub = sub
	}

	collected, err := claims.Encode(h.claims.Collect(g.claimNames, g.user))
	if err != nil {
		return nil, fmt.Errorf("failed to encode claims: %w", err)
	}
	req.Claims = collected

	return h.api.AuthorizationIssue(ctx, req)
}

// failAuthorization rejects the transaction with reason.
func (h *Handler) failAuthorization(
	ctx context.Context, ticket string, reason engine.AuthorizationFailReason, description string,
) (*engine.AuthorizationResultResponse, error) {
	return h.api.AuthorizationFail(ctx, &engine.AuthorizationFailRequest{
		Ticket:      ticket,
		Reason:      reason,
		Description: description,
	})
}
