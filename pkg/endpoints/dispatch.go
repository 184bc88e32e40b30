// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package endpoints

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stacklok/authfront/pkg/pipeline"
	"github.com/stacklok/authfront/pkg/response"
)

// newEndpoint wires the stages of one endpoint into a pipeline terminated by
// the handler's recoverer.
func newEndpoint[Req, Resp any](
	h *Handler,
	path string,
	translate func(*http.Request) (Req, error),
	call func(context.Context, Req) (Resp, error),
	build func(context.Context, Resp) (*response.Response, error),
) (http.Handler, error) {
	e, err := pipeline.New(pipeline.Config[Req, Resp]{
		Path:       path,
		Translator: pipeline.TranslatorFunc[Req](translate),
		Caller:     pipeline.CallerFunc[Req, Resp](call),
		Builder:    pipeline.BuilderFunc[Resp](build),
		Recoverer:  h.recoverer,
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// engineFailure reports a failure action as a decided response.
func engineFailure[A ~string](path string, action A, resp *response.Response) error {
	return response.NewError(response.KindEngineAction,
		fmt.Sprintf("engine answered %s for %s", action, path), resp)
}

// unknownAction logs and reports an action outside the closed set of path.
func (h *Handler) unknownAction(ctx context.Context, path, action string) error {
	h.logger.ErrorContext(ctx, "unknown engine action", "path", path, "action", action)
	return &response.UnknownActionError{Path: path, Action: action}
}
