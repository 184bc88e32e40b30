// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stacklok/authfront/pkg/versions"
)

const (
	// DefaultTimeout bounds a single engine call.
	DefaultTimeout = 30 * time.Second

	// maxResponseBodySize is the maximum size for reading engine responses (4 MB).
	maxResponseBodySize = 4 << 20

	meterName = "github.com/stacklok/authfront/pkg/engine"
)

// Engine API paths, relative to the configured base URL.
const (
	pathPushedAuthReq      = "/pushed_auth_req"
	pathAuthorization      = "/auth/authorization"
	pathAuthorizationIssue = "/auth/authorization/issue"
	pathAuthorizationFail  = "/auth/authorization/fail"
	pathToken              = "/auth/token"
	pathTokenIssue         = "/auth/token/issue"
	pathTokenFail          = "/auth/token/fail"
	pathTokenCreate        = "/auth/token/create"
	pathIntrospection      = "/auth/introspection/standard"
	pathRevocation         = "/auth/revocation"
	pathUserInfo           = "/auth/userinfo"
	pathUserInfoIssue      = "/auth/userinfo/issue"
	pathCredentialMetadata = "/vci/metadata"
	pathConfiguration      = "/service/configuration"
	pathJWKS               = "/service/jwks/get"
)

// Config holds the connection settings of the engine.
type Config struct {
	// BaseURL is the engine API root, e.g. https://engine.example.com/api/123.
	BaseURL string

	// AccessToken authenticates with a bearer token. Takes precedence over APIKey.
	AccessToken string

	// APIKey and APISecret authenticate with HTTP Basic.
	APIKey    string
	APISecret string

	// Timeout bounds each call. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("engine base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid engine base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("engine base URL must use http or https, got %q", u.Scheme)
	}
	if c.AccessToken == "" && (c.APIKey == "" || c.APISecret == "") {
		return errors.New("engine credentials are required: set an access token or an API key and secret")
	}
	return nil
}

// APIError is returned when the engine answers with a non-2xx status, which
// means the call itself was rejected rather than answered with an action.
type APIError struct {
	Path          string
	StatusCode    int
	ResultCode    string
	ResultMessage string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.ResultMessage != "" {
		return fmt.Sprintf("engine call %s failed with status %d: %s %s",
			e.Path, e.StatusCode, e.ResultCode, e.ResultMessage)
	}
	return fmt.Sprintf("engine call %s failed with status %d", e.Path, e.StatusCode)
}

// HTTPClient is an HTTP client for the engine APIs.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	authorize  func(*http.Request)
	logger     *slog.Logger
	duration   metric.Float64Histogram
}

// Compile-time interface check.
var _ API = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the HTTP client used for engine calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMeterProvider records call durations on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *HTTPClient) {
		if mp != nil {
			c.duration = newDurationHistogram(mp)
		}
	}
}

// NewClient creates an engine client. Calls are never retried by the client:
// several engine APIs consume one-time state.
func NewClient(cfg Config, opts ...Option) (*HTTPClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:   slog.Default(),
		duration: newDurationHistogram(otel.GetMeterProvider()),
	}

	if cfg.AccessToken != "" {
		token := cfg.AccessToken
		c.authorize = func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
	} else {
		key, secret := cfg.APIKey, cfg.APISecret
		c.authorize = func(r *http.Request) { r.SetBasicAuth(key, secret) }
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newDurationHistogram(mp metric.MeterProvider) metric.Float64Histogram {
	h, err := mp.Meter(meterName).Float64Histogram(
		"authfront.engine.call.duration",
		metric.WithDescription("Duration of calls to the authorization engine"),
		metric.WithUnit("s"),
	)
	if err != nil {
		slog.Warn("failed to create engine call histogram", "error", err)
	}
	return h
}

// PushedAuthorization calls the pushed authorization request API.
func (c *HTTPClient) PushedAuthorization(ctx context.Context, req *PushedAuthReqRequest) (*PushedAuthReqResponse, error) {
	return call[PushedAuthReqResponse](ctx, c, pathPushedAuthReq, req)
}

// Authorization calls the authorization API.
func (c *HTTPClient) Authorization(ctx context.Context, req *AuthorizationRequest) (*AuthorizationResponse, error) {
	return call[AuthorizationResponse](ctx, c, pathAuthorization, req)
}

// AuthorizationIssue calls the authorization issue API.
func (c *HTTPClient) AuthorizationIssue(
	ctx context.Context, req *AuthorizationIssueRequest,
) (*AuthorizationResultResponse, error) {
	return call[AuthorizationResultResponse](ctx, c, pathAuthorizationIssue, req)
}

// AuthorizationFail calls the authorization fail API.
func (c *HTTPClient) AuthorizationFail(
	ctx context.Context, req *AuthorizationFailRequest,
) (*AuthorizationResultResponse, error) {
	return call[AuthorizationResultResponse](ctx, c, pathAuthorizationFail, req)
}

// Token calls the token API.
func (c *HTTPClient) Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	return call[TokenResponse](ctx, c, pathToken, req)
}

// TokenIssue calls the token issue API.
func (c *HTTPClient) TokenIssue(ctx context.Context, req *TokenIssueRequest) (*TokenIssueResponse, error) {
	return call[TokenIssueResponse](ctx, c, pathTokenIssue, req)
}

// TokenFail calls the token fail API.
func (c *HTTPClient) TokenFail(ctx context.Context, req *TokenFailRequest) (*TokenFailResponse, error) {
	return call[TokenFailResponse](ctx, c, pathTokenFail, req)
}

// TokenCreate calls the token create API.
func (c *HTTPClient) TokenCreate(ctx context.Context, req *TokenCreateRequest) (*TokenCreateResponse, error) {
	return call[TokenCreateResponse](ctx, c, pathTokenCreate, req)
}

// Introspection calls the standard introspection API.
func (c *HTTPClient) Introspection(ctx context.Context, req *IntrospectionRequest) (*IntrospectionResponse, error) {
	return call[IntrospectionResponse](ctx, c, pathIntrospection, req)
}

// Revocation calls the revocation API.
func (c *HTTPClient) Revocation(ctx context.Context, req *RevocationRequest) (*RevocationResponse, error) {
	return call[RevocationResponse](ctx, c, pathRevocation, req)
}

// UserInfo calls the userinfo API.
func (c *HTTPClient) UserInfo(ctx context.Context, req *UserInfoRequest) (*UserInfoResponse, error) {
	return call[UserInfoResponse](ctx, c, pathUserInfo, req)
}

// UserInfoIssue calls the userinfo issue API.
func (c *HTTPClient) UserInfoIssue(ctx context.Context, req *UserInfoIssueRequest) (*UserInfoIssueResponse, error) {
	return call[UserInfoIssueResponse](ctx, c, pathUserInfoIssue, req)
}

// CredentialIssuerMetadata calls the credential issuer metadata API.
func (c *HTTPClient) CredentialIssuerMetadata(
	ctx context.Context, req *CredentialMetadataRequest,
) (*CredentialMetadataResponse, error) {
	return call[CredentialMetadataResponse](ctx, c, pathCredentialMetadata, req)
}

// Configuration fetches the OpenID Provider discovery document.
func (c *HTTPClient) Configuration(ctx context.Context) (RawDocument, error) {
	return c.get(ctx, pathConfiguration)
}

// JWKS fetches the service JWK set.
func (c *HTTPClient) JWKS(ctx context.Context) (RawDocument, error) {
	return c.get(ctx, pathJWKS)
}

func call[T any](ctx context.Context, c *HTTPClient, path string, in any) (*T, error) {
	var out T
	if err := c.post(ctx, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string) (RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	data, err := c.do(req, path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("engine returned invalid JSON from %s", path)
	}
	return RawDocument(data), nil
}

func (c *HTTPClient) do(req *http.Request, path string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", versions.UserAgent())
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(req.Context(), path, "error", start)
		return nil, fmt.Errorf("engine call %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		c.record(req.Context(), path, "error", start)
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.record(req.Context(), path, "rejected", start)
		apiErr := &APIError{Path: path, StatusCode: resp.StatusCode}
		var result Result
		if json.Unmarshal(data, &result) == nil {
			apiErr.ResultCode = result.ResultCode
			apiErr.ResultMessage = result.ResultMessage
		}
		c.logger.Debug("engine call rejected",
			"path", path,
			"status", resp.StatusCode,
			"result_code", apiErr.ResultCode,
		)
		return nil, apiErr
	}

	c.record(req.Context(), path, "ok", start)
	return data, nil
}

func (c *HTTPClient) record(ctx context.Context, path, outcome string, start time.Time) {
	if c.duration == nil {
		return
	}
	c.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("engine.path", path),
		attribute.String("outcome", outcome),
	))
}
