// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"fmt"

	"github.com/ory/fosite"
)

// ErrorKind classifies a ResponseError for logging and tests.
type ErrorKind string

const (
	// KindValidation marks malformed input rejected before the engine call.
	KindValidation ErrorKind = "validation"
	// KindEngineAction marks a failure the engine explicitly signaled.
	KindEngineAction ErrorKind = "engine_action"
	// KindCredential marks a failed resource owner credential check.
	KindCredential ErrorKind = "credential"
	// KindSubjectResolution marks a token-exchange or JWT-bearer request whose
	// subject could not be determined.
	KindSubjectResolution ErrorKind = "subject_resolution"
)

// ResponseError couples a message with a response that is already final.
// Whoever recovers it must send Response to the client unchanged.
//
//nolint:revive // the name mirrors what it carries
type ResponseError struct {
	Kind     ErrorKind
	Message  string
	Response *Response
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Response == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.Response.StatusCode)
}

// NewError wraps resp in a ResponseError.
func NewError(kind ErrorKind, message string, resp *Response) *ResponseError {
	return &ResponseError{Kind: kind, Message: message, Response: resp}
}

// ValidationError is a 400 invalid_request carrying message as the description.
func ValidationError(message string) *ResponseError {
	return NewError(KindValidation, message, OAuthError(fosite.ErrInvalidRequest, message))
}

// SubjectResolutionError is a 400 invalid_request raised when the subject of a
// token exchange or JWT bearer grant cannot be determined.
func SubjectResolutionError(message string) *ResponseError {
	return NewError(KindSubjectResolution, message, OAuthError(fosite.ErrInvalidRequest, message))
}

// UnknownActionError reports an engine action outside the closed set known for
// an endpoint. It always indicates a protocol version mismatch.
type UnknownActionError struct {
	Path   string
	Action string
}

// Error implements the error interface.
func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q returned by the engine for %s", e.Action, e.Path)
}

// FromError synthesizes the 500 response used for any error that does not
// already carry a response.
func FromError(err error) *Response {
	return OAuthError(fosite.ErrServerError, err.Error())
}
