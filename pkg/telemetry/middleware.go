// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/stacklok/authfront/pkg/telemetry"

// RequestDurationBuckets are the histogram boundaries, in seconds, for
// endpoint latency. Most time is spent waiting on the engine.
var RequestDurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// Middleware traces every request and records per-route request counts and
// durations. Routes are reported by their chi pattern, so unmatched paths
// collapse into a single series.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	meter := p.meterProvider.Meter(instrumentationName)

	requests, err := meter.Int64Counter(
		"authfront.http.requests",
		metric.WithDescription("Number of requests served, by route and status"),
	)
	if err != nil {
		slog.Warn("failed to create request counter", "error", err)
	}
	duration, err := meter.Float64Histogram(
		"authfront.http.request.duration",
		metric.WithDescription("Duration of requests served, by route"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RequestDurationBuckets...),
	)
	if err != nil {
		slog.Warn("failed to create request duration histogram", "error", err)
	}

	record := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		attrs := metric.WithAttributes(
			attribute.String("http.route", routePattern(r)),
			attribute.String("http.request.method", r.Method),
			attribute.String("http.response.status_code", strconv.Itoa(status)),
		)
		if requests != nil {
			requests.Add(r.Context(), 1, attrs)
		}
		if duration != nil {
			duration.Record(r.Context(), time.Since(start).Seconds(), attrs)
		}
	})

	return otelhttp.NewHandler(record, p.config.ServiceName,
		otelhttp.WithTracerProvider(p.tracerProvider),
		otelhttp.WithMeterProvider(p.meterProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
