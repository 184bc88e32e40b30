// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package subject derives the subject identifiers presented to clients.
package subject

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stacklok/authfront/pkg/engine"
)

// Pairwise returns the pairwise subject of sub for client (OpenID Connect
// Core §8.1): the lowercase hex SHA-256 of
// "{subjectType}-{sectorIdentifier}-{subject}". It reports false when the
// client does not use pairwise subjects, in which case the public subject
// applies unchanged.
func Pairwise(sub string, client *engine.Client) (string, bool) {
	if sub == "" || client == nil {
		return "", false
	}
	if !client.SubjectType.Is(engine.SubjectTypePairwise) || client.DerivedSectorIdentifier == "" {
		return "", false
	}

	// The engine reports "PAIRWISE"; the hash prefix is always the lowercase
	// form so subjects do not change with the engine's casing.
	input := string(engine.SubjectTypePairwise) + "-" + client.DerivedSectorIdentifier + "-" + sub
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]), true
}

// Resolve returns the subject to present to client: the pairwise subject
// when the client uses one, sub otherwise.
func Resolve(sub string, client *engine.Client) string {
	if p, ok := Pairwise(sub, client); ok {
		return p
	}
	return sub
}

var (
	// ErrMissingToken is returned when there is no token to read a subject from.
	ErrMissingToken = errors.New("token is missing")

	// ErrMissingSubject is returned when a token carries no "sub" claim.
	ErrMissingSubject = errors.New("sub claim is missing")
)

// UnverifiedJWTSubject returns the "sub" claim of a JWT.
//
// WARNING: this does NOT verify the token signature, its issuer, audience or
// expiry. It only decodes the payload. It must never be used to
// authenticate anything; it is only safe on tokens the authorization engine
// has already validated, such as the subject token of a token exchange or
// the assertion of a JWT bearer grant that the engine accepted.
func UnverifiedJWTSubject(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to decode JWT: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("invalid sub claim: %w", err)
	}
	if sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}
