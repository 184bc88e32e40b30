// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the authfront configuration from a YAML file and
// AUTHFRONT_* environment variables.
//
// Environment variables name the YAML key path joined by underscores, e.g.
// engine.access_token is AUTHFRONT_ENGINE_ACCESS_TOKEN. They take precedence
// over the file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/telemetry"
	"github.com/stacklok/authfront/pkg/versions"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUTHFRONT"

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config is the complete authfront configuration.
type Config struct {
	Server             ServerConfig             `mapstructure:"server"`
	Engine             EngineConfig             `mapstructure:"engine"`
	Session            SessionConfig            `mapstructure:"session"`
	Users              UsersConfig              `mapstructure:"users"`
	Introspection      IntrospectionConfig      `mapstructure:"introspection"`
	CredentialMetadata CredentialMetadataConfig `mapstructure:"credential_metadata"`
	Telemetry          TelemetryConfig          `mapstructure:"telemetry"`
	RateLimit          RateLimitConfig          `mapstructure:"rate_limit"`
}

// ServerConfig configures the public HTTP listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`

	// PublicURL is the externally visible base URL, e.g. https://as.example.com.
	// Required behind a proxy for DPoP htu values to match.
	PublicURL string `mapstructure:"public_url"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`

	// ClientCertificateHeader names the header a TLS-terminating proxy puts
	// the URL-escaped client certificate in.
	ClientCertificateHeader string `mapstructure:"client_certificate_header"`

	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`
}

// EngineConfig configures the connection to the authorization engine.
type EngineConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	APIKey      string        `mapstructure:"api_key"`
	APISecret   string        `mapstructure:"api_secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	Backend      string        `mapstructure:"backend"`
	CookieName   string        `mapstructure:"cookie_name"`
	SecureCookie bool          `mapstructure:"secure_cookie"`
	TTL          time.Duration `mapstructure:"ttl"`
	Redis        RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the Redis session backend.
type RedisConfig struct {
	Addrs      []string `mapstructure:"addrs"`
	MasterName string   `mapstructure:"master_name"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	DB         int      `mapstructure:"db"`
	KeyPrefix  string   `mapstructure:"key_prefix"`
}

// UsersConfig locates the user database.
type UsersConfig struct {
	File string `mapstructure:"file"`
}

// IntrospectionConfig lists the resource servers allowed to introspect.
// When empty the endpoint is open.
type IntrospectionConfig struct {
	ResourceServers []ResourceServer `mapstructure:"resource_servers"`
}

// ResourceServer is an introspection caller credential.
type ResourceServer struct {
	ID     string `mapstructure:"id"`
	Secret string `mapstructure:"secret"`
}

// CredentialMetadataConfig configures the credential issuer metadata endpoint.
type CredentialMetadataConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	OTLPEndpoint   string            `mapstructure:"otlp_endpoint"`
	Headers        map[string]string `mapstructure:"headers"`
	Insecure       bool              `mapstructure:"insecure"`
	SamplingRate   float64           `mapstructure:"sampling_rate"`
	Metrics        bool              `mapstructure:"metrics"`
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"`
	MetricsAddress string            `mapstructure:"metrics_address"`

	// Attributes is a comma-separated list of key=value resource attributes.
	Attributes string `mapstructure:"attributes"`
}

// RateLimitConfig bounds the request rate per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

var defaults = map[string]any{
	"server.address":                   ":8080",
	"server.public_url":                "",
	"server.read_timeout":              10 * time.Second,
	"server.write_timeout":             30 * time.Second,
	"server.idle_timeout":              120 * time.Second,
	"server.shutdown_timeout":          15 * time.Second,
	"server.max_body_size":             int64(1 << 20),
	"server.client_certificate_header": "",
	"server.tls_cert_file":             "",
	"server.tls_key_file":              "",

	"engine.base_url":     "",
	"engine.access_token": "",
	"engine.api_key":      "",
	"engine.api_secret":   "",
	"engine.timeout":      engine.DefaultTimeout,

	"session.backend":           SessionBackendMemory,
	"session.cookie_name":       session.DefaultCookieName,
	"session.secure_cookie":     true,
	"session.ttl":               session.DefaultTTL,
	"session.redis.addrs":       []string{},
	"session.redis.master_name": "",
	"session.redis.username":    "",
	"session.redis.password":    "",
	"session.redis.db":          0,
	"session.redis.key_prefix":  "authfront:session:",

	"users.file": "",

	"credential_metadata.pretty": false,

	"telemetry.otlp_endpoint":   "",
	"telemetry.insecure":        false,
	"telemetry.sampling_rate":   0.1,
	"telemetry.metrics":         true,
	"telemetry.runtime_metrics": true,
	"telemetry.metrics_address": ":9090",
	"telemetry.attributes":      "",

	"rate_limit.requests_per_second": 0.0,
	"rate_limit.burst":               0,
}

// Load reads the configuration from path, when set, and the environment.
// The result is not validated.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith is Load on a caller-supplied viper instance, so flags bound to it
// take part in resolution.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// EngineClientConfig returns the engine client settings.
func (c *Config) EngineClientConfig() engine.Config {
	return engine.Config{
		BaseURL:     c.Engine.BaseURL,
		AccessToken: c.Engine.AccessToken,
		APIKey:      c.Engine.APIKey,
		APISecret:   c.Engine.APISecret,
		Timeout:     c.Engine.Timeout,
	}
}

// RedisBackendConfig returns the Redis session backend settings.
func (c *Config) RedisBackendConfig() session.RedisConfig {
	r := c.Session.Redis
	return session.RedisConfig{
		Addrs:      r.Addrs,
		MasterName: r.MasterName,
		Username:   r.Username,
		Password:   r.Password,
		DB:         r.DB,
		KeyPrefix:  r.KeyPrefix,
	}
}

// ResourceServerCredentials returns the introspection callers keyed by id.
func (c *Config) ResourceServerCredentials() map[string]string {
	if len(c.Introspection.ResourceServers) == 0 {
		return nil
	}
	m := make(map[string]string, len(c.Introspection.ResourceServers))
	for _, rs := range c.Introspection.ResourceServers {
		m[rs.ID] = rs.Secret
	}
	return m
}

// TelemetryProviderConfig returns the telemetry provider settings.
func (c *Config) TelemetryProviderConfig() (telemetry.Config, error) {
	attrs, err := telemetry.ParseResourceAttributes(c.Telemetry.Attributes)
	if err != nil {
		return telemetry.Config{}, fmt.Errorf("invalid telemetry attributes: %w", err)
	}
	t := c.Telemetry
	return telemetry.Config{
		ServiceName:           "authfront",
		ServiceVersion:        versions.GetVersionInfo().Version,
		OTLPEndpoint:          t.OTLPEndpoint,
		Headers:               t.Headers,
		Insecure:              t.Insecure,
		SamplingRate:          t.SamplingRate,
		MetricsEnabled:        t.Metrics,
		IncludeRuntimeMetrics: t.RuntimeMetrics,
		ResourceAttributes:    attrs,
	}, nil
}

// TLSEnabled reports whether the listener serves TLS itself.
func (c *ServerConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" || c.TLSKeyFile != ""
}

// errRequired formats a missing-key error with the key's environment name.
func errRequired(key string) error {
	env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return fmt.Errorf("%s is required (or set %s)", key, env)
}
