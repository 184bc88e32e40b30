// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package response provides the HTTP response primitives shared by every
// endpoint of the adapter, together with the error taxonomy used to carry an
// already-decided response through the request pipeline.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ory/fosite"
)

// Media types for engine-produced content.
const (
	ContentTypeJSON             = "application/json;charset=UTF-8"
	ContentTypeHTML             = "text/html;charset=UTF-8"
	ContentTypeJWT              = "application/jwt"
	ContentTypeIntrospectionJWT = "application/token-introspection+jwt"
)

// Headers the adapter sets on behalf of the engine.
const (
	HeaderDPoPNonce       = "DPoP-Nonce"
	HeaderWWWAuthenticate = "WWW-Authenticate"
)

const (
	headerCacheControl      = "Cache-Control"
	headerPragma            = "Pragma"
	headerContentType       = "Content-Type"
	headerLocation          = "Location"
	fallbackServerErrorBody = `{"error":"server_error"}`
)

// Response is a finalized HTTP response: status, headers and body are fixed
// once built and are written to the client verbatim.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a response with the given status, content type and body.
// An empty content type leaves the Content-Type header unset.
func New(status int, contentType string, body string) *Response {
	r := &Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       []byte(body),
	}
	if contentType != "" {
		r.Header.Set(headerContentType, contentType)
	}
	return r
}

// WithHeader sets a header on the response and returns it. Empty values are ignored.
func (r *Response) WithHeader(key, value string) *Response {
	if value == "" {
		return r
	}
	r.Header.Set(key, value)
	return r
}

// WithHeaders copies every header in h onto the response.
func (r *Response) WithHeaders(h http.Header) *Response {
	for k, vs := range h {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	return r
}

// WithDPoPNonce echoes the engine-issued DPoP nonce, if any.
func (r *Response) WithDPoPNonce(nonce string) *Response {
	return r.WithHeader(HeaderDPoPNonce, nonce)
}

// WithChallenge sets WWW-Authenticate when a challenge is available.
func (r *Response) WithChallenge(challenge string) *Response {
	return r.WithHeader(HeaderWWWAuthenticate, challenge)
}

// Write sends the response to w.
func (r *Response) Write(w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range r.Header {
		h[k] = append([]string(nil), vs...)
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.StatusCode)
	if len(r.Body) == 0 {
		return
	}
	if _, err := w.Write(r.Body); err != nil {
		slog.Debug("failed to write response body", "error", err)
	}
}

// noStore marks a response as non-cacheable (RFC 6749 §5.1).
func noStore(r *Response) *Response {
	r.Header.Set(headerCacheControl, "no-store")
	r.Header.Set(headerPragma, "no-cache")
	return r
}

// JSON builds a non-cacheable JSON response.
func JSON(status int, body string) *Response {
	return noStore(New(status, ContentTypeJSON, body))
}

// OK is 200 with a JSON body.
func OK(body string) *Response { return JSON(http.StatusOK, body) }

// Created is 201 with a JSON body.
func Created(body string) *Response { return JSON(http.StatusCreated, body) }

// BadRequest is 400 with a JSON body.
func BadRequest(body string) *Response { return JSON(http.StatusBadRequest, body) }

// Unauthorized is 401 with a JSON body and, when non-empty, a WWW-Authenticate challenge.
func Unauthorized(body, challenge string) *Response {
	return JSON(http.StatusUnauthorized, body).WithChallenge(challenge)
}

// Forbidden is 403 with a JSON body.
func Forbidden(body string) *Response { return JSON(http.StatusForbidden, body) }

// NotFound is 404 with a JSON body.
func NotFound(body string) *Response { return JSON(http.StatusNotFound, body) }

// PayloadTooLarge is 413 with a JSON body.
func PayloadTooLarge(body string) *Response { return JSON(http.StatusRequestEntityTooLarge, body) }

// TooManyRequests is 429 with a JSON body.
func TooManyRequests(body string) *Response { return JSON(http.StatusTooManyRequests, body) }

// InternalServerError is 500 with a JSON body.
func InternalServerError(body string) *Response {
	return JSON(http.StatusInternalServerError, body)
}

// Location is a 302 redirect to location.
func Location(location string) *Response {
	return noStore(New(http.StatusFound, "", "")).WithHeader(headerLocation, location)
}

// Form is 200 with an HTML body, used for form_post style responses.
func Form(html string) *Response {
	return noStore(New(http.StatusOK, ContentTypeHTML, html))
}

// Challenge builds a body-less response whose only content is the
// WWW-Authenticate challenge, as produced for bearer-token protected endpoints.
func Challenge(status int, challenge string) *Response {
	return noStore(New(status, "", "")).WithChallenge(challenge)
}

// ErrorBody renders the standard OAuth error JSON body.
func ErrorBody(code, description string) string {
	body := map[string]string{"error": code}
	if description != "" {
		body["error_description"] = description
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fallbackServerErrorBody
	}
	return string(b)
}

// OAuthError builds a JSON error response from a fosite error kind, using its
// status code and error code with the given description.
func OAuthError(kind *fosite.RFC6749Error, description string) *Response {
	return JSON(kind.CodeField, ErrorBody(kind.ErrorField, description))
}
