// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry tracing and Prometheus metrics for
// authfront.
//
// Traces are exported over OTLP/HTTP when an endpoint is configured. Metrics
// are collected by an OpenTelemetry meter provider and exposed through a
// Prometheus handler, and are also pushed to the OTLP endpoint when one is
// set. With neither configured the providers are no-ops.
package telemetry

import (
	"errors"
	"fmt"

	"github.com/stacklok/authfront/pkg/versions"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the service.name resource attribute.
	ServiceName string

	// ServiceVersion is the service.version resource attribute.
	ServiceVersion string

	// OTLPEndpoint is the OTLP/HTTP collector endpoint, e.g. "localhost:4318".
	// Tracing is disabled when empty.
	OTLPEndpoint string

	// Headers are sent with every OTLP request.
	Headers map[string]string

	// Insecure uses HTTP instead of HTTPS for the OTLP endpoint.
	Insecure bool

	// SamplingRate is the ratio of root traces sampled (0.0-1.0).
	SamplingRate float64

	// MetricsEnabled exposes Prometheus metrics through [Provider.PrometheusHandler].
	MetricsEnabled bool

	// IncludeRuntimeMetrics adds the Go runtime and process collectors.
	// Ignored when metrics are disabled.
	IncludeRuntimeMetrics bool

	// ResourceAttributes are added to every span and metric.
	ResourceAttributes map[string]string
}

// DefaultConfig returns a configuration with tracing off and metrics on.
func DefaultConfig() Config {
	return Config{
		ServiceName:           "authfront",
		ServiceVersion:        versions.GetVersionInfo().Version,
		SamplingRate:          0.1,
		MetricsEnabled:        true,
		IncludeRuntimeMetrics: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service name is required"))
	}
	if c.SamplingRate < 0 || c.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("sampling rate must be between 0 and 1, got %v", c.SamplingRate))
	}
	return errors.Join(errs...)
}

func (c *Config) tracingEnabled() bool {
	return c.OTLPEndpoint != ""
}
