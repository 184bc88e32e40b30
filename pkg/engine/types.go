// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import "strings"

// Result is embedded in every engine response.
type Result struct {
	ResultCode    string `json:"resultCode,omitempty"`
	ResultMessage string `json:"resultMessage,omitempty"`
}

// SubjectType selects how the subject presented to a client is derived.
type SubjectType string

// Subject types (OpenID Connect Core §8).
const (
	SubjectTypePublic   SubjectType = "public"
	SubjectTypePairwise SubjectType = "pairwise"
)

// Is reports whether t names the same subject type as other, ignoring case.
// The engine reports subject types in upper case.
func (t SubjectType) Is(other SubjectType) bool {
	return strings.EqualFold(string(t), string(other))
}

// Client is the subset of client metadata the adapter reads from engine responses.
type Client struct {
	ClientID                int64       `json:"clientId,omitempty"`
	ClientIDAlias           string      `json:"clientIdAlias,omitempty"`
	ClientName              string      `json:"clientName,omitempty"`
	SubjectType             SubjectType `json:"subjectType,omitempty"`
	DerivedSectorIdentifier string      `json:"derivedSectorIdentifier,omitempty"`
}

// Scope is a scope described by the engine.
type Scope struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Prompt is an OpenID Connect prompt value as reported by the engine.
type Prompt string

// Prompt values.
const (
	PromptNone          Prompt = "NONE"
	PromptLogin         Prompt = "LOGIN"
	PromptConsent       Prompt = "CONSENT"
	PromptSelectAccount Prompt = "SELECT_ACCOUNT"
	PromptCreate        Prompt = "CREATE"
)

// TokenType identifies the type of a token in token exchange (RFC 8693 §3).
type TokenType string

// Token types in the engine's vocabulary.
const (
	TokenTypeAccessToken  TokenType = "ACCESS_TOKEN"
	TokenTypeRefreshToken TokenType = "REFRESH_TOKEN"
	TokenTypeIDToken      TokenType = "ID_TOKEN"
	TokenTypeJWT          TokenType = "JWT"
	TokenTypeSAML1        TokenType = "SAML1"
	TokenTypeSAML2        TokenType = "SAML2"
)

// tokenTypeURIs maps RFC 8693 token type URIs onto the engine's vocabulary.
var tokenTypeURIs = map[string]TokenType{
	"urn:ietf:params:oauth:token-type:access_token":  TokenTypeAccessToken,
	"urn:ietf:params:oauth:token-type:refresh_token": TokenTypeRefreshToken,
	"urn:ietf:params:oauth:token-type:id_token":      TokenTypeIDToken,
	"urn:ietf:params:oauth:token-type:jwt":           TokenTypeJWT,
	"urn:ietf:params:oauth:token-type:saml1":         TokenTypeSAML1,
	"urn:ietf:params:oauth:token-type:saml2":         TokenTypeSAML2,
}

// Normalize returns the engine-vocabulary form of t, accepting either the
// engine name or the RFC 8693 URI.
func (t TokenType) Normalize() TokenType {
	if mapped, ok := tokenTypeURIs[string(t)]; ok {
		return mapped
	}
	return TokenType(strings.ToUpper(string(t)))
}

// GrantType names a grant in Token-Create requests.
type GrantType string

// Grant types used by the adapter when creating tokens.
const (
	GrantTypeTokenExchange GrantType = "TOKEN_EXCHANGE"
	GrantTypeJWTBearer     GrantType = "JWT_BEARER"
)

// IssuedTokenTypeAccessToken is reported as issued_token_type for exchanged tokens.
//
//nolint:gosec // G101: URN identifier, not a credential
const IssuedTokenTypeAccessToken = "urn:ietf:params:oauth:token-type:access_token"

// ClientAuth carries the client credentials and certificate presented on the
// inbound request, forwarded to APIs that authenticate clients.
type ClientAuth struct {
	ClientID              string   `json:"clientId,omitempty"`
	ClientSecret          string   `json:"clientSecret,omitempty"`
	ClientCertificate     string   `json:"clientCertificate,omitempty"`
	ClientCertificatePath []string `json:"clientCertificatePath,omitempty"`
}

// DPoPInput carries the DPoP proof and the request coordinates it must bind to.
type DPoPInput struct {
	DPoP string `json:"dpop,omitempty"`
	HTM  string `json:"htm,omitempty"`
	HTU  string `json:"htu,omitempty"`
}

// PushedAuthReqRequest is the request of the pushed authorization request API.
type PushedAuthReqRequest struct {
	Parameters string `json:"parameters"`
	ClientAuth
	DPoPInput
}

// PushedAuthReqResponse is the response of the pushed authorization request API.
type PushedAuthReqResponse struct {
	Result
	Action          PushedAuthReqAction `json:"action"`
	ResponseContent string              `json:"responseContent,omitempty"`
	RequestURI      string              `json:"requestUri,omitempty"`
	ExpiresIn       int64               `json:"expiresIn,omitempty"`
	DPoPNonce       string              `json:"dpopNonce,omitempty"`
}

// AuthorizationRequest is the request of the authorization API.
type AuthorizationRequest struct {
	Parameters string `json:"parameters"`
}

// AuthorizationResponse is the response of the authorization API.
type AuthorizationResponse struct {
	Result
	Action          AuthorizationAction `json:"action"`
	ResponseContent string              `json:"responseContent,omitempty"`
	Ticket          string              `json:"ticket,omitempty"`
	Client          *Client             `json:"client,omitempty"`
	Prompts         []Prompt            `json:"prompts,omitempty"`
	MaxAge          int64               `json:"maxAge,omitempty"`
	Subject         string              `json:"subject,omitempty"`
	LoginHint       string              `json:"loginHint,omitempty"`
	Claims          []string            `json:"claims,omitempty"`
	ClaimsLocales   []string            `json:"claimsLocales,omitempty"`
	Scopes          []Scope             `json:"scopes,omitempty"`
	ACRs            []string            `json:"acrs,omitempty"`
	DPoPNonce       string              `json:"dpopNonce,omitempty"`
}

// HasPrompt reports whether the request carried prompt p.
func (r *AuthorizationResponse) HasPrompt(p Prompt) bool {
	for _, got := range r.Prompts {
		if strings.EqualFold(string(got), string(p)) {
			return true
		}
	}
	return false
}

// AuthorizationIssueRequest is the request of the authorization issue API.
type AuthorizationIssueRequest struct {
	Ticket   string `json:"ticket"`
	Subject  string `json:"subject"`
	Sub      string `json:"sub,omitempty"`
	AuthTime int64  `json:"authTime,omitempty"`
	ACR      string `json:"acr,omitempty"`
	Claims   string `json:"claims,omitempty"`
}

// AuthorizationFailRequest is the request of the authorization fail API.
type AuthorizationFailRequest struct {
	Ticket      string                  `json:"ticket"`
	Reason      AuthorizationFailReason `json:"reason"`
	Description string                  `json:"description,omitempty"`
}

// AuthorizationResultResponse is the response of the authorization issue and fail APIs.
type AuthorizationResultResponse struct {
	Result
	Action          AuthorizationResultAction `json:"action"`
	ResponseContent string                    `json:"responseContent,omitempty"`
}

// TokenRequest is the request of the token API.
type TokenRequest struct {
	Parameters string `json:"parameters"`
	ClientAuth
	DPoPInput
}

// SubjectTokenInfo is what the engine resolved about an access or refresh
// token presented as a token exchange subject token.
type SubjectTokenInfo struct {
	Subject  string   `json:"subject,omitempty"`
	ClientID int64    `json:"clientId,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// TokenResponse is the response of the token API.
type TokenResponse struct {
	Result
	Action           TokenAction       `json:"action"`
	ResponseContent  string            `json:"responseContent,omitempty"`
	Ticket           string            `json:"ticket,omitempty"`
	Username         string            `json:"username,omitempty"`
	Password         string            `json:"password,omitempty"`
	ClientID         int64             `json:"clientId,omitempty"`
	Scopes           []string          `json:"scopes,omitempty"`
	Resources        []string          `json:"resources,omitempty"`
	SubjectToken     string            `json:"subjectToken,omitempty"`
	SubjectTokenType TokenType         `json:"subjectTokenType,omitempty"`
	SubjectTokenInfo *SubjectTokenInfo `json:"subjectTokenInfo,omitempty"`
	Assertion        string            `json:"assertion,omitempty"`
	DPoPNonce        string            `json:"dpopNonce,omitempty"`
}

// TokenIssueRequest is the request of the token issue API.
type TokenIssueRequest struct {
	Ticket  string `json:"ticket"`
	Subject string `json:"subject"`
}

// TokenIssueResponse is the response of the token issue API.
type TokenIssueResponse struct {
	Result
	Action          TokenIssueAction `json:"action"`
	ResponseContent string           `json:"responseContent,omitempty"`
	DPoPNonce       string           `json:"dpopNonce,omitempty"`
}

// TokenFailRequest is the request of the token fail API.
type TokenFailRequest struct {
	Ticket string          `json:"ticket"`
	Reason TokenFailReason `json:"reason"`
}

// TokenFailResponse is the response of the token fail API.
type TokenFailResponse struct {
	Result
	Action          TokenFailAction `json:"action"`
	ResponseContent string          `json:"responseContent,omitempty"`
}

// TokenCreateRequest is the request of the token create API.
type TokenCreateRequest struct {
	GrantType GrantType `json:"grantType"`
	ClientID  int64     `json:"clientId"`
	Subject   string    `json:"subject,omitempty"`
	Scopes    []string  `json:"scopes,omitempty"`
	Resources []string  `json:"resources,omitempty"`
}

// TokenCreateResponse is the response of the token create API.
type TokenCreateResponse struct {
	Result
	Action       TokenCreateAction `json:"action"`
	AccessToken  string            `json:"accessToken,omitempty"`
	RefreshToken string            `json:"refreshToken,omitempty"`
	TokenType    string            `json:"tokenType,omitempty"`
	ExpiresIn    int64             `json:"expiresIn,omitempty"`
	Scopes       []string          `json:"scopes,omitempty"`
}

// IntrospectionRequest is the request of the standard (RFC 7662) introspection API.
type IntrospectionRequest struct {
	Parameters       string `json:"parameters"`
	HTTPAcceptHeader string `json:"httpAcceptHeader,omitempty"`
	DPoPInput
}

// IntrospectionResponse is the response of the standard introspection API.
type IntrospectionResponse struct {
	Result
	Action          IntrospectionAction `json:"action"`
	ResponseContent string              `json:"responseContent,omitempty"`
	DPoPNonce       string              `json:"dpopNonce,omitempty"`
}

// RevocationRequest is the request of the revocation API.
type RevocationRequest struct {
	Parameters string `json:"parameters"`
	ClientAuth
}

// RevocationResponse is the response of the revocation API.
type RevocationResponse struct {
	Result
	Action          RevocationAction `json:"action"`
	ResponseContent string           `json:"responseContent,omitempty"`
}

// UserInfoRequest is the request of the userinfo API.
type UserInfoRequest struct {
	Token             string `json:"token"`
	ClientCertificate string `json:"clientCertificate,omitempty"`
	DPoPInput
}

// UserInfoResponse is the response of the userinfo API.
type UserInfoResponse struct {
	Result
	Action          UserInfoAction `json:"action"`
	ResponseContent string         `json:"responseContent,omitempty"`
	Token           string         `json:"token,omitempty"`
	Subject         string         `json:"subject,omitempty"`
	Claims          []string       `json:"claims,omitempty"`
	Client          *Client        `json:"client,omitempty"`
	DPoPNonce       string         `json:"dpopNonce,omitempty"`
}

// UserInfoIssueRequest is the request of the userinfo issue API.
type UserInfoIssueRequest struct {
	Token  string `json:"token"`
	Sub    string `json:"sub,omitempty"`
	Claims string `json:"claims,omitempty"`
}

// UserInfoIssueResponse is the response of the userinfo issue API.
type UserInfoIssueResponse struct {
	Result
	Action          UserInfoIssueAction `json:"action"`
	ResponseContent string              `json:"responseContent,omitempty"`
	DPoPNonce       string              `json:"dpopNonce,omitempty"`
}

// CredentialMetadataRequest is the request of the credential issuer metadata API.
type CredentialMetadataRequest struct {
	Pretty bool `json:"pretty"`
}

// CredentialMetadataResponse is the response of the credential issuer metadata API.
type CredentialMetadataResponse struct {
	Result
	Action          CredentialMetadataAction `json:"action"`
	ResponseContent string                   `json:"responseContent,omitempty"`
}

// RawDocument is an engine answer that is not action tagged, such as the
// discovery document or the JWK set, forwarded to the client as is.
type RawDocument []byte
