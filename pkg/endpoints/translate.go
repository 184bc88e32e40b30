// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/response"
)

const (
	headerAuthorization = "Authorization"
	headerDPoP          = "DPoP"
	headerAccept        = "Accept"

	formContentType = "application/x-www-form-urlencoded"
)

// params is the parameter set of an inbound request: the raw form-encoded
// string forwarded to the engine and its parsed form.
type params struct {
	raw    string
	values url.Values
}

// readParams extracts the request parameters from the query string of GET
// requests and from the form-encoded body of POST requests. When allowGet is
// false only POST is accepted.
func (h *Handler) readParams(r *http.Request, allowGet bool) (*params, error) {
	var raw string
	switch r.Method {
	case http.MethodGet:
		if !allowGet {
			return nil, methodNotAllowed(r.Method)
		}
		raw = r.URL.RawQuery
	case http.MethodPost:
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != formContentType {
				return nil, response.ValidationError("Content-Type must be " + formContentType)
			}
		}
		body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, h.maxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				msg := fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)
				return nil, response.NewError(response.KindValidation, msg,
					response.PayloadTooLarge(response.ErrorBody("invalid_request", msg)))
			}
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		raw = string(body)
	default:
		return nil, methodNotAllowed(r.Method)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, response.ValidationError("malformed request parameters")
	}
	return &params{raw: raw, values: values}, nil
}

func methodNotAllowed(method string) error {
	msg := fmt.Sprintf("method %s is not allowed", method)
	return response.NewError(response.KindValidation, msg,
		response.JSON(http.StatusMethodNotAllowed, response.ErrorBody("invalid_request", msg)))
}

// clientAuth extracts client credentials from HTTP Basic authentication,
// falling back to client_id and client_secret form parameters, plus any
// client certificate presented on the connection.
func (h *Handler) clientAuth(r *http.Request, p *params) (engine.ClientAuth, error) {
	var auth engine.ClientAuth

	if id, secret, ok := basicAuth(r); ok {
		auth.ClientID, auth.ClientSecret = id, secret
	} else if p != nil {
		auth.ClientID = p.values.Get("client_id")
		auth.ClientSecret = p.values.Get("client_secret")
	}

	cert, path, err := h.clientCertificate(r)
	if err != nil {
		return auth, err
	}
	auth.ClientCertificate, auth.ClientCertificatePath = cert, path
	return auth, nil
}

// basicAuth decodes HTTP Basic credentials. Client IDs and secrets are
// form-urlencoded before being encoded (RFC 6749 §2.3.1).
func basicAuth(r *http.Request) (string, string, bool) {
	id, secret, ok := r.BasicAuth()
	if !ok {
		return "", "", false
	}
	uid, err := url.QueryUnescape(id)
	if err != nil {
		return "", "", false
	}
	usecret, err := url.QueryUnescape(secret)
	if err != nil {
		return "", "", false
	}
	return uid, usecret, true
}

// clientCertificate returns the PEM client certificate and its chain from the
// TLS connection, or from the configured proxy header when the connection
// carries none.
func (h *Handler) clientCertificate(r *http.Request) (string, []string, error) {
	if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
		certs := r.TLS.PeerCertificates
		leaf := encodeCertificate(certs[0].Raw)
		var chain []string
		for _, c := range certs[1:] {
			chain = append(chain, encodeCertificate(c.Raw))
		}
		return leaf, chain, nil
	}

	if h.clientCertHeader == "" {
		return "", nil, nil
	}
	escaped := r.Header.Get(h.clientCertHeader)
	if escaped == "" {
		return "", nil, nil
	}
	cert, err := url.QueryUnescape(escaped)
	if err != nil {
		return "", nil, response.ValidationError("malformed client certificate header")
	}
	if block, _ := pem.Decode([]byte(cert)); block == nil || block.Type != "CERTIFICATE" {
		return "", nil, response.ValidationError("client certificate header does not carry a PEM certificate")
	}
	return cert, nil, nil
}

func encodeCertificate(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

// dpop returns the DPoP proof of r with the method and URL it must be bound to.
func (h *Handler) dpop(r *http.Request) engine.DPoPInput {
	return engine.DPoPInput{
		DPoP: r.Header.Get(headerDPoP),
		HTM:  r.Method,
		HTU:  h.endpointURL(r),
	}
}

// endpointURL returns the externally visible URL of the endpoint r was sent to.
func (h *Handler) endpointURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL + r.URL.Path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// accessToken extracts an access token from the Authorization header (Bearer
// or DPoP scheme, RFC 6750 §2.1 and RFC 9449 §7.1) or from the access_token
// form parameter (RFC 6750 §2.2).
func accessToken(r *http.Request, p *params) string {
	if header := r.Header.Get(headerAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "DPoP")) {
			return strings.TrimSpace(token)
		}
	}
	if p != nil {
		return p.values.Get("access_token")
	}
	return ""
}
