// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/authfront/pkg/config"
	"github.com/stacklok/authfront/pkg/endpoints"
	"github.com/stacklok/authfront/pkg/engine"
	"github.com/stacklok/authfront/pkg/logger"
	"github.com/stacklok/authfront/pkg/server"
	"github.com/stacklok/authfront/pkg/session"
	"github.com/stacklok/authfront/pkg/telemetry"
	"github.com/stacklok/authfront/pkg/users"
)

// newServeCmd creates the serve command for starting the authorization server
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authorization server",
		Long: `Start the authorization server.

The server reads the configuration file given by --config, applies AUTHFRONT_*
environment overrides and serves the OAuth 2.0 and OpenID Connect endpoints
until it receives SIGINT or SIGTERM.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", "", "Listen address, overrides server.address")
	return cmd
}

// runServe implements the serve command logic
func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	v := viper.New()
	if err := v.BindPFlag("server.address", cmd.Flags().Lookup("address")); err != nil {
		return fmt.Errorf("failed to bind address flag: %w", err)
	}
	cfg, err := loadConfig(v, viper.GetString("config"))
	if err != nil {
		return err
	}

	srv, err := buildServer(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// buildServer wires every component described by cfg. Resources acquired
// before a failure are released.
func buildServer(ctx context.Context, cfg *config.Config) (_ *server.Server, retErr error) {
	var cleanups []func(context.Context) error
	defer func() {
		if retErr == nil {
			return
		}
		for _, cleanup := range cleanups {
			_ = cleanup(context.Background())
		}
	}()

	telemetryCfg, err := cfg.TelemetryProviderConfig()
	if err != nil {
		return nil, err
	}
	provider, err := telemetry.NewProvider(ctx, telemetryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	cleanups = append(cleanups, provider.Shutdown)

	api, err := engine.NewClient(cfg.EngineClientConfig(),
		engine.WithLogger(logger.Component("engine")),
		engine.WithMeterProvider(provider.MeterProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client: %w", err)
	}

	store, err := users.LoadStaticStore(cfg.Users.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	logger.Infof("Loaded %d users from %s", store.Len(), cfg.Users.File)

	routerOpts := []server.RouterOption{
		server.WithRouterLogger(logger.Component("http")),
		server.WithMiddleware(provider.Middleware),
	}

	backend, check, err := newSessionBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if check != nil {
		routerOpts = append(routerOpts, server.WithReadinessCheck("sessions", check))
	}
	sessions := session.NewManager(backend,
		session.WithTTL(cfg.Session.TTL),
		session.WithCookieName(cfg.Session.CookieName),
		session.WithSecureCookie(cfg.Session.SecureCookie),
	)
	cleanups = append([]func(context.Context) error{func(context.Context) error { return sessions.Close() }}, cleanups...)

	handler, err := endpoints.NewHandler(api, store, sessions,
		endpoints.WithLogger(logger.Component("endpoints")),
		endpoints.WithPublicURL(cfg.Server.PublicURL),
		endpoints.WithClientCertificateHeader(cfg.Server.ClientCertificateHeader),
		endpoints.WithResourceServers(cfg.ResourceServerCredentials()),
		endpoints.WithMaxBodySize(cfg.Server.MaxBodySize),
		endpoints.WithPrettyCredentialMetadata(cfg.CredentialMetadata.Pretty),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create endpoints: %w", err)
	}

	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		routerOpts = append(routerOpts, server.WithRateLimiter(server.NewRateLimiter(rl.RequestsPerSecond, rl.Burst)))
		logger.Infof("Rate limiting clients to %g req/s (burst %d)", rl.RequestsPerSecond, rl.Burst)
	}

	serverOpts := []server.Option{server.WithLogger(logger.Component("server"))}
	if h := provider.PrometheusHandler(); h != nil {
		serverOpts = append(serverOpts, server.WithMetricsHandler(h))
	}
	for _, cleanup := range cleanups {
		serverOpts = append(serverOpts, server.WithShutdownHook(cleanup))
	}

	s := cfg.Server
	return server.New(server.Config{
		Address:         s.Address,
		ReadTimeout:     s.ReadTimeout,
		WriteTimeout:    s.WriteTimeout,
		IdleTimeout:     s.IdleTimeout,
		ShutdownTimeout: s.ShutdownTimeout,
		TLSCertFile:     s.TLSCertFile,
		TLSKeyFile:      s.TLSKeyFile,
		MetricsAddress:  cfg.Telemetry.MetricsAddress,
	}, server.NewRouter(handler, routerOpts...), serverOpts...), nil
}

// newSessionBackend creates the configured session backend and, for remote
// backends, a readiness check.
func newSessionBackend(ctx context.Context, cfg *config.Config) (session.Backend, server.Check, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		backend, err := session.NewRedisBackend(ctx, cfg.RedisBackendConfig())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis session backend: %w", err)
		}
		logger.Infof("Using redis session backend at %v", cfg.Session.Redis.Addrs)
		return backend, backend.Ping, nil
	default:
		logger.Info("Using in-memory session backend")
		return session.NewMemoryBackend(), nil, nil
	}
}
