// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stacklok/authfront/pkg/response"
)

// DiagnosticFunc is invoked once for every failed request with the endpoint
// path and the causing error.
type DiagnosticFunc func(ctx context.Context, path string, err error)

// ErrorRecovery is the default Recoverer.
//
// A successful result is forwarded unchanged. A *response.ResponseError is
// answered with its embedded response verbatim. Any other error becomes a 500
// built from the error message. The diagnostic callback runs for both kinds of
// failure.
type ErrorRecovery struct {
	diagnostic DiagnosticFunc
}

// RecoveryOption configures an ErrorRecovery.
type RecoveryOption func(*ErrorRecovery)

// WithDiagnostic replaces the diagnostic callback.
func WithDiagnostic(fn DiagnosticFunc) RecoveryOption {
	return func(r *ErrorRecovery) {
		if fn != nil {
			r.diagnostic = fn
		}
	}
}

// NewErrorRecovery creates an ErrorRecovery that logs failures to logger.
func NewErrorRecovery(logger *slog.Logger, opts ...RecoveryOption) *ErrorRecovery {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ErrorRecovery{diagnostic: LogDiagnostic(logger)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LogDiagnostic returns a DiagnosticFunc writing to logger. Already-decided
// responses are logged at warn level, anything else at error level.
func LogDiagnostic(logger *slog.Logger) DiagnosticFunc {
	return func(ctx context.Context, path string, err error) {
		var respErr *response.ResponseError
		if errors.As(err, &respErr) && respErr.Response != nil {
			logger.WarnContext(ctx, "request failed",
				"path", path,
				"kind", respErr.Kind,
				"status", respErr.Response.StatusCode,
				"error", err,
			)
			return
		}
		logger.ErrorContext(ctx, "request failed",
			"path", path,
			"error", err,
		)
	}
}

// Recover implements Recoverer.
func (r *ErrorRecovery) Recover(ctx context.Context, path string, result Result[*response.Response]) *response.Response {
	resp, ok := result.Value()
	if ok && resp != nil {
		return resp
	}
	err := result.Err()
	if err == nil {
		err = errors.New("no response was produced")
	}
	r.diagnose(ctx, path, err)

	var respErr *response.ResponseError
	if errors.As(err, &respErr) {
		if respErr.Response != nil {
			return respErr.Response
		}
		// A decided error without its response still answers with the message.
		return response.FromError(errors.New(respErr.Message))
	}
	return response.FromError(err)
}

func (r *ErrorRecovery) diagnose(ctx context.Context, path string, err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("diagnostic callback panicked", "path", path, "panic", p)
		}
	}()
	r.diagnostic(ctx, path, err)
}
