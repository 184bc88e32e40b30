// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

// Every engine response carries an action drawn from a closed set that is
// specific to the API it answers. Each set has its own type so a dispatch on
// one API cannot accidentally match another API's action.

// PushedAuthReqAction is the action of a pushed authorization request response.
type PushedAuthReqAction string

// Pushed authorization request actions.
const (
	PushedAuthReqCreated             PushedAuthReqAction = "CREATED"
	PushedAuthReqBadRequest          PushedAuthReqAction = "BAD_REQUEST"
	PushedAuthReqUnauthorized        PushedAuthReqAction = "UNAUTHORIZED"
	PushedAuthReqForbidden           PushedAuthReqAction = "FORBIDDEN"
	PushedAuthReqPayloadTooLarge     PushedAuthReqAction = "PAYLOAD_TOO_LARGE"
	PushedAuthReqInternalServerError PushedAuthReqAction = "INTERNAL_SERVER_ERROR"
)

// AuthorizationAction is the action of an authorization response.
type AuthorizationAction string

// Authorization actions.
const (
	AuthorizationInternalServerError AuthorizationAction = "INTERNAL_SERVER_ERROR"
	AuthorizationBadRequest          AuthorizationAction = "BAD_REQUEST"
	AuthorizationLocation            AuthorizationAction = "LOCATION"
	AuthorizationForm                AuthorizationAction = "FORM"
	AuthorizationNoInteraction       AuthorizationAction = "NO_INTERACTION"
	AuthorizationInteraction         AuthorizationAction = "INTERACTION"
)

// AuthorizationResultAction is the action of an authorization issue or fail response.
type AuthorizationResultAction string

// Authorization issue/fail actions.
const (
	AuthorizationResultInternalServerError AuthorizationResultAction = "INTERNAL_SERVER_ERROR"
	AuthorizationResultBadRequest          AuthorizationResultAction = "BAD_REQUEST"
	AuthorizationResultLocation            AuthorizationResultAction = "LOCATION"
	AuthorizationResultForm                AuthorizationResultAction = "FORM"
)

// AuthorizationFailReason tells the engine why an authorization request is
// being rejected.
type AuthorizationFailReason string

// Authorization fail reasons.
const (
	ReasonUnknown                  AuthorizationFailReason = "UNKNOWN"
	ReasonNotLoggedIn              AuthorizationFailReason = "NOT_LOGGED_IN"
	ReasonMaxAgeNotSupported       AuthorizationFailReason = "MAX_AGE_NOT_SUPPORTED"
	ReasonExceedsMaxAge            AuthorizationFailReason = "EXCEEDS_MAX_AGE"
	ReasonDifferentSubject         AuthorizationFailReason = "DIFFERENT_SUBJECT"
	ReasonACRNotSatisfied          AuthorizationFailReason = "ACR_NOT_SATISFIED"
	ReasonDenied                   AuthorizationFailReason = "DENIED"
	ReasonServerError              AuthorizationFailReason = "SERVER_ERROR"
	ReasonNotAuthenticated         AuthorizationFailReason = "NOT_AUTHENTICATED"
	ReasonAccountSelectionRequired AuthorizationFailReason = "ACCOUNT_SELECTION_REQUIRED"
	ReasonConsentRequired          AuthorizationFailReason = "CONSENT_REQUIRED"
	ReasonInteractionRequired      AuthorizationFailReason = "INTERACTION_REQUIRED"
	ReasonInvalidTarget            AuthorizationFailReason = "INVALID_TARGET"
)

// TokenAction is the action of a token response.
type TokenAction string

// Token actions.
const (
	TokenInvalidClient       TokenAction = "INVALID_CLIENT"
	TokenInternalServerError TokenAction = "INTERNAL_SERVER_ERROR"
	TokenBadRequest          TokenAction = "BAD_REQUEST"
	TokenPassword            TokenAction = "PASSWORD"
	TokenOK                  TokenAction = "OK"
	TokenTokenExchange       TokenAction = "TOKEN_EXCHANGE"
	TokenJWTBearer           TokenAction = "JWT_BEARER"
	TokenIDTokenReissuable   TokenAction = "ID_TOKEN_REISSUABLE"
)

// TokenIssueAction is the action of a token issue response.
type TokenIssueAction string

// Token issue actions.
const (
	TokenIssueInternalServerError TokenIssueAction = "INTERNAL_SERVER_ERROR"
	TokenIssueInvalidTicket       TokenIssueAction = "INVALID_TICKET"
	TokenIssueOK                  TokenIssueAction = "OK"
)

// TokenFailAction is the action of a token fail response.
type TokenFailAction string

// Token fail actions.
const (
	TokenFailInternalServerError TokenFailAction = "INTERNAL_SERVER_ERROR"
	TokenFailBadRequest          TokenFailAction = "BAD_REQUEST"
)

// TokenFailReason tells the engine why a token request is being rejected.
type TokenFailReason string

// Token fail reasons.
const (
	TokenFailReasonUnknown                         TokenFailReason = "UNKNOWN"
	TokenFailReasonInvalidResourceOwnerCredentials TokenFailReason = "INVALID_RESOURCE_OWNER_CREDENTIALS"
)

// TokenCreateAction is the action of a token create response.
type TokenCreateAction string

// Token create actions.
const (
	TokenCreateInternalServerError TokenCreateAction = "INTERNAL_SERVER_ERROR"
	TokenCreateBadRequest          TokenCreateAction = "BAD_REQUEST"
	TokenCreateForbidden           TokenCreateAction = "FORBIDDEN"
	TokenCreateOK                  TokenCreateAction = "OK"
)

// IntrospectionAction is the action of a standard introspection response.
type IntrospectionAction string

// Standard introspection actions.
const (
	IntrospectionInternalServerError IntrospectionAction = "INTERNAL_SERVER_ERROR"
	IntrospectionBadRequest          IntrospectionAction = "BAD_REQUEST"
	IntrospectionOK                  IntrospectionAction = "OK"
	IntrospectionJWT                 IntrospectionAction = "JWT"
)

// RevocationAction is the action of a revocation response.
type RevocationAction string

// Revocation actions.
const (
	RevocationInvalidClient       RevocationAction = "INVALID_CLIENT"
	RevocationInternalServerError RevocationAction = "INTERNAL_SERVER_ERROR"
	RevocationBadRequest          RevocationAction = "BAD_REQUEST"
	RevocationOK                  RevocationAction = "OK"
)

// UserInfoAction is the action of a userinfo response.
type UserInfoAction string

// UserInfo actions.
const (
	UserInfoInternalServerError UserInfoAction = "INTERNAL_SERVER_ERROR"
	UserInfoBadRequest          UserInfoAction = "BAD_REQUEST"
	UserInfoUnauthorized        UserInfoAction = "UNAUTHORIZED"
	UserInfoForbidden           UserInfoAction = "FORBIDDEN"
	UserInfoOK                  UserInfoAction = "OK"
)

// UserInfoIssueAction is the action of a userinfo issue response.
type UserInfoIssueAction string

// UserInfo issue actions.
const (
	UserInfoIssueInternalServerError UserInfoIssueAction = "INTERNAL_SERVER_ERROR"
	UserInfoIssueBadRequest          UserInfoIssueAction = "BAD_REQUEST"
	UserInfoIssueUnauthorized        UserInfoIssueAction = "UNAUTHORIZED"
	UserInfoIssueForbidden           UserInfoIssueAction = "FORBIDDEN"
	UserInfoIssueJSON                UserInfoIssueAction = "JSON"
	UserInfoIssueJWT                 UserInfoIssueAction = "JWT"
)

// CredentialMetadataAction is the action of a credential issuer metadata response.
type CredentialMetadataAction string

// Credential issuer metadata actions.
const (
	CredentialMetadataOK                  CredentialMetadataAction = "OK"
	CredentialMetadataNotFound            CredentialMetadataAction = "NOT_FOUND"
	CredentialMetadataInternalServerError CredentialMetadataAction = "INTERNAL_SERVER_ERROR"
)
