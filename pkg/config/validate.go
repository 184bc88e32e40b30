// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateEngine()...)
	errs = append(errs, c.validateSession()...)
	if c.Users.File == "" {
		errs = append(errs, errRequired("users.file"))
	}
	errs = append(errs, c.validateIntrospection()...)
	errs = append(errs, c.validateTelemetry()...)
	errs = append(errs, c.validateRateLimit()...)
	return errors.Join(errs...)
}

func (c *Config) validateServer() []error {
	var errs []error
	s := c.Server
	if s.Address == "" {
		errs = append(errs, errRequired("server.address"))
	}
	if s.PublicURL != "" {
		u, err := url.Parse(s.PublicURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("server.public_url is invalid: %w", err))
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("server.public_url must use http or https, got %q", u.Scheme))
		case u.Host == "":
			errs = append(errs, errors.New("server.public_url must include a host"))
		}
	}
	if s.MaxBodySize < 0 {
		errs = append(errs, errors.New("server.max_body_size must not be negative"))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must not be negative"))
	}
	if (s.TLSCertFile == "") != (s.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.tls_cert_file and server.tls_key_file must be set together"))
	}
	return errs
}

func (c *Config) validateEngine() []error {
	if c.Engine.BaseURL == "" {
		return []error{errRequired("engine.base_url")}
	}
	if c.Engine.Timeout < 0 {
		return []error{errors.New("engine.timeout must not be negative")}
	}
	engineCfg := c.EngineClientConfig()
	if err := engineCfg.Validate(); err != nil {
		return []error{fmt.Errorf("engine: %w", err)}
	}
	return nil
}

func (c *Config) validateSession() []error {
	var errs []error
	s := c.Session
	switch s.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if len(s.Redis.Addrs) == 0 {
			errs = append(errs, errRequired("session.redis.addrs"))
		}
		if s.Redis.KeyPrefix == "" {
			errs = append(errs, errRequired("session.redis.key_prefix"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.backend must be %q or %q, got %q",
			SessionBackendMemory, SessionBackendRedis, s.Backend))
	}
	if s.CookieName == "" {
		errs = append(errs, errRequired("session.cookie_name"))
	}
	if s.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	return errs
}

func (c *Config) validateIntrospection() []error {
	var errs []error
	seen := make(map[string]bool, len(c.Introspection.ResourceServers))
	for i, rs := range c.Introspection.ResourceServers {
		if rs.ID == "" || rs.Secret == "" {
			errs = append(errs, fmt.Errorf("introspection.resource_servers[%d] needs an id and a secret", i))
			continue
		}
		if seen[rs.ID] {
			errs = append(errs, fmt.Errorf("introspection.resource_servers[%d]: duplicate id %q", i, rs.ID))
		}
		seen[rs.ID] = true
	}
	return errs
}

func (c *Config) validateTelemetry() []error {
	var errs []error
	t := c.Telemetry
	if t.SamplingRate < 0 || t.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be between 0 and 1, got %v", t.SamplingRate))
	}
	if t.Metrics && t.MetricsAddress == "" {
		errs = append(errs, errRequired("telemetry.metrics_address"))
	}
	if _, err := c.TelemetryProviderConfig(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

func (c *Config) validateRateLimit() []error {
	r := c.RateLimit
	if r.RequestsPerSecond < 0 {
		return []error{errors.New("rate_limit.requests_per_second must not be negative")}
	}
	if r.RequestsPerSecond > 0 && r.Burst < 1 {
		return []error{errors.New("rate_limit.burst must be at least 1 when rate limiting is enabled")}
	}
	return nil
}
