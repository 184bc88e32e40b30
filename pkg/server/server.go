// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package server runs the authfront HTTP listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	// defaultReadHeaderTimeout limits the time to read request headers.
	defaultReadHeaderTimeout = 10 * time.Second

	// defaultMaxHeaderBytes is the maximum size of request headers (1 MB).
	defaultMaxHeaderBytes = 1 << 20

	// defaultShutdownTimeout is the maximum time to wait for in-flight requests.
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds listener settings.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// TLSCertFile and TLSKeyFile enable TLS on the main listener.
	TLSCertFile string
	TLSKeyFile  string

	// MetricsAddress is the listener of the metrics handler, if any.
	MetricsAddress string
}

// Server serves the public handler and, optionally, a metrics handler on a
// separate listener.
type Server struct {
	config  Config
	handler http.Handler
	metrics http.Handler
	logger  *slog.Logger

	onShutdown []func(context.Context) error

	mu          sync.Mutex
	addr        string
	metricsAddr string
	ready       chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h on Config.MetricsAddress at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownHook runs fn after the listeners have stopped. Hooks run in
// registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(s *Server) {
		s.onShutdown = append(s.onShutdown, fn)
	}
}

// New creates a Server.
func New(cfg Config, handler http.Handler, opts ...Option) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  slog.Default(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready is closed once every listener accepts connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address of the main listener once ready.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// MetricsAddr returns the bound address of the metrics listener once ready.
func (s *Server) MetricsAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsAddr
}

func (s *Server) newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// listener down gracefully and runs the shutdown hooks. Run may be called
// only once.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	public := s.newHTTPServer(s.handler)
	servers := []*http.Server{public}

	var metricsListener net.Listener
	var metricsSrv *http.Server
	if s.metrics != nil && s.config.MetricsAddress != "" {
		metricsListener, err = lc.Listen(ctx, "tcp", s.config.MetricsAddress)
		if err != nil {
			_ = listener.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.config.MetricsAddress, err)
		}
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", s.metrics)
		metricsSrv = s.newHTTPServer(mux)
		servers = append(servers, metricsSrv)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	if metricsListener != nil {
		s.metricsAddr = metricsListener.Addr().String()
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tls := s.config.TLSCertFile != ""
		s.logger.Info("authorization server listening", "address", listener.Addr().String(), "tls", tls)
		var serveErr error
		if tls {
			serveErr = public.ServeTLS(listener, s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			serveErr = public.Serve(listener)
		}
		return serveError("authorization server", serveErr)
	})
	if metricsSrv != nil {
		g.Go(func() error {
			s.logger.Info("metrics server listening", "address", metricsListener.Addr().String())
			return serveError("metrics server", metricsSrv.Serve(metricsListener))
		})
	}
	close(s.ready)

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		return s.shutdown(servers)
	})

	return g.Wait()
}

func serveError(name string, err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s failed: %w", name, err)
}

func (s *Server) shutdown(servers []*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down listener: %w", err))
		}
	}
	for _, hook := range s.onShutdown {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
