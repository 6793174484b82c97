/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package lifecycle runs the status service with its listeners and handles
// graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/grpc"
	log "github.com/sirupsen/logrus"
)

const (
	ShutdownTimeout       = 10 * time.Second
	DefaultHealthInterval = 5 * time.Second
	readHeaderTimeout     = 10 * time.Second
)

var errServe = errors.New("listener failed")

//go:generate mockgen -destination=mock_lifecycle.go -package=lifecycle github.com/mfreeman451/pterostatus/pkg/lifecycle Service

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ShutdownHook runs after the listeners stop and before the service stops.
type ShutdownHook func(context.Context) error

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ListenAddr  string
	GRPCAddr    string
	ServiceName string
	Handler     http.Handler
	Service     Service

	// Healthy feeds the gRPC health status. Nil means always serving.
	Healthy        func() bool
	HealthInterval time.Duration

	// Listener overrides ListenAddr when set.
	Listener net.Listener

	OnShutdown      []ShutdownHook
	ShutdownTimeout time.Duration
	Signals         []os.Signal
}

// RunServer starts the service and its listeners and blocks until a signal,
// a listener error or ctx cancellation, then shuts everything down.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	errChan := make(chan error, 2)

	httpServer := &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lis := opts.Listener
	if lis == nil {
		var err error

		lis, err = net.Listen("tcp", opts.ListenAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
		}
	}

	if err := opts.Service.Start(ctx); err != nil {
		_ = lis.Close()
		return fmt.Errorf("failed to start service: %w", err)
	}

	go func() {
		log.Printf("Status page listening on http://%s", lis.Addr())

		if err := httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("%w: http: %w", errServe, err)
		}
	}()

	var grpcServer *grpc.Server

	if opts.GRPCAddr != "" {
		grpcServer = grpc.NewServer(opts.GRPCAddr, opts.ServiceName)

		go func() {
			if err := grpcServer.Start(); err != nil {
				errChan <- fmt.Errorf("%w: grpc: %w", errServe, err)
			}
		}()

		go watchHealth(ctx, grpcServer, opts.Healthy, opts.HealthInterval)
	}

	return handleShutdown(ctx, opts, httpServer, grpcServer, errChan)
}

func watchHealth(ctx context.Context, s *grpc.Server, healthy func() bool, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	update := func() {
		s.SetServing(healthy == nil || healthy())
	}

	update()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

func handleShutdown(
	ctx context.Context,
	opts *ServerOptions,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	errChan chan error) error {
	signals := opts.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Errorf("Received error: %v, initiating shutdown", err)
		runErr = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	var errs []error

	if runErr != nil {
		errs = append(errs, runErr)
	}

	if grpcServer != nil {
		grpcServer.Stop(shutdownCtx)
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	for _, hook := range opts.OnShutdown {
		if err := hook(shutdownCtx); err != nil {
			log.Printf("Error in shutdown hook: %v", err)
			errs = append(errs, err)
		}
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		log.Printf("Error during service shutdown: %v", err)
		errs = append(errs, fmt.Errorf("shutdown error: %w", err))
	}

	log.Printf("Service %s stopped", opts.ServiceName)

	return errors.Join(errs...)
}
