// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline implements the four-stage request pipeline every endpoint
// runs through: translate the HTTP request into an engine request, call the
// engine, build the HTTP response from the engine's answer, and recover any
// failure into a response.
//
// The stages run strictly in that order and the engine is called at most once
// per request. A failed call is never retried here because engine calls can
// consume one-time state (tickets, pushed requests) on the server side.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/authfront/pkg/response"
)

const instrumentationName = "github.com/stacklok/authfront/pkg/pipeline"

// Translator parses an inbound HTTP request into an engine request.
type Translator[Req any] interface {
	Translate(r *http.Request) (Req, error)
}

// Caller sends a request to the engine.
type Caller[Req, Resp any] interface {
	Call(ctx context.Context, req Req) (Resp, error)
}

// Builder turns an engine response into an HTTP response.
type Builder[Resp any] interface {
	Build(ctx context.Context, resp Resp) (*response.Response, error)
}

// Recoverer is the terminal stage. It receives the outcome of the previous
// stages and must always return a valid response.
type Recoverer interface {
	Recover(ctx context.Context, path string, result Result[*response.Response]) *response.Response
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc[Req any] func(r *http.Request) (Req, error)

// Translate implements Translator.
func (f TranslatorFunc[Req]) Translate(r *http.Request) (Req, error) { return f(r) }

// CallerFunc adapts a function to Caller.
type CallerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Call implements Caller.
func (f CallerFunc[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) { return f(ctx, req) }

// BuilderFunc adapts a function to Builder.
type BuilderFunc[Resp any] func(ctx context.Context, resp Resp) (*response.Response, error)

// Build implements Builder.
func (f BuilderFunc[Resp]) Build(ctx context.Context, resp Resp) (*response.Response, error) {
	return f(ctx, resp)
}

// Config wires the four stages of a single endpoint.
type Config[Req, Resp any] struct {
	// Path identifies the endpoint in logs, spans and diagnostics.
	Path       string
	Translator Translator[Req]
	Caller     Caller[Req, Resp]
	Builder    Builder[Resp]
	Recoverer  Recoverer
}

// Endpoint is a configured pipeline. It is immutable and safe for concurrent use.
type Endpoint[Req, Resp any] struct {
	cfg    Config[Req, Resp]
	tracer trace.Tracer
}

// New validates cfg and returns the endpoint.
func New[Req, Resp any](cfg Config[Req, Resp]) (*Endpoint[Req, Resp], error) {
	var errs []error
	if cfg.Path == "" {
		errs = append(errs, errors.New("path is required"))
	}
	if cfg.Translator == nil {
		errs = append(errs, errors.New("translator is required"))
	}
	if cfg.Caller == nil {
		errs = append(errs, errors.New("caller is required"))
	}
	if cfg.Builder == nil {
		errs = append(errs, errors.New("builder is required"))
	}
	if cfg.Recoverer == nil {
		errs = append(errs, errors.New("recoverer is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid pipeline configuration for %q: %w", cfg.Path, errors.Join(errs...))
	}
	return &Endpoint[Req, Resp]{
		cfg:    cfg,
		tracer: otel.Tracer(instrumentationName),
	}, nil
}

// MustNew is like New but panics on invalid configuration. It is meant for
// wiring done once at startup.
func MustNew[Req, Resp any](cfg Config[Req, Resp]) *Endpoint[Req, Resp] {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Path returns the configured endpoint path.
func (e *Endpoint[Req, Resp]) Path() string {
	return e.cfg.Path
}

// Execute runs the pipeline for r. The recoverer is invoked exactly once.
func (e *Endpoint[Req, Resp]) Execute(r *http.Request) *response.Response {
	ctx, span := e.tracer.Start(r.Context(), "pipeline "+e.cfg.Path,
		trace.WithAttributes(attribute.String("authfront.path", e.cfg.Path)))
	defer span.End()

	result := e.run(ctx, r.WithContext(ctx))
	if err := result.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	resp := e.recoverResult(ctx, result)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp
}

// recoverResult runs the recoverer. A panicking recoverer or a nil response falls
// back to a generic 500.
func (e *Endpoint[Req, Resp]) recoverResult(ctx context.Context, result Result[*response.Response]) (resp *response.Response) {
	defer func() {
		if p := recover(); p != nil {
			resp = response.FromError(fmt.Errorf("panic in recoverer of %s: %v", e.cfg.Path, p))
		}
	}()
	resp = e.cfg.Recoverer.Recover(ctx, e.cfg.Path, result)
	if resp == nil {
		resp = response.FromError(fmt.Errorf("recoverer of %s produced no response", e.cfg.Path))
	}
	return resp
}

// ServeHTTP implements http.Handler.
func (e *Endpoint[Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Execute(r).Write(w)
}

func (e *Endpoint[Req, Resp]) run(ctx context.Context, r *http.Request) (result Result[*response.Response]) {
	defer func() {
		if p := recover(); p != nil {
			result = Fail[*response.Response](fmt.Errorf("panic in pipeline %s: %v", e.cfg.Path, p))
		}
	}()

	_, span := e.tracer.Start(ctx, "translate")
	req, err := e.cfg.Translator.Translate(r)
	endStage(span, err)
	if err != nil {
		return Fail[*response.Response](err)
	}

	callCtx, span := e.tracer.Start(ctx, "call")
	resp, err := e.cfg.Caller.Call(callCtx, req)
	endStage(span, err)
	if err != nil {
		return Fail[*response.Response](err)
	}

	buildCtx, span := e.tracer.Start(ctx, "build")
	out, err := e.cfg.Builder.Build(buildCtx, resp)
	endStage(span, err)
	if err != nil {
		return Fail[*response.Response](err)
	}
	if out == nil {
		return Fail[*response.Response](fmt.Errorf("builder for %s returned no response", e.cfg.Path))
	}
	return Ok(out)
}

func endStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
