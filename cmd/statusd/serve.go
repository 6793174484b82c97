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

package main

import (
	"context"
	"fmt"

	"github.com/mfreeman451/pterostatus/pkg/alerts"
	"github.com/mfreeman451/pterostatus/pkg/api"
	"github.com/mfreeman451/pterostatus/pkg/config"
	"github.com/mfreeman451/pterostatus/pkg/db"
	"github.com/mfreeman451/pterostatus/pkg/lifecycle"
	"github.com/mfreeman451/pterostatus/pkg/logger"
	"github.com/mfreeman451/pterostatus/pkg/metrics"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/mfreeman451/pterostatus/pkg/monitoring"
	"github.com/mfreeman451/pterostatus/pkg/panel"
	"github.com/mfreeman451/pterostatus/pkg/probe"
	"github.com/mfreeman451/pterostatus/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func serve(ctx context.Context, path string) error {
	var cfg config.StatusConfig

	if err := config.LoadAndValidate(path, &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Setup(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	deps := monitoring.Deps{
		Lister: panel.NewClient(panel.Config{
			BaseURL:           cfg.Panel.URL,
			APIKey:            cfg.Panel.APIKey,
			PageSize:          cfg.Panel.PageSize,
			RequestsPerSecond: cfg.Panel.RequestsPerSecond,
			Burst:             cfg.Panel.Burst,
			Timeout:           cfg.Panel.Timeout,
		}),
		Prober:   probe.NewHTTPProber(cfg.Monitor.ProbeTimeout),
		Recorder: collector,
	}

	dispatcher, err := alerts.NewDispatcherFromConfig(cfg.Alerts.Webhooks)
	if err != nil {
		return fmt.Errorf("configure alerts: %w", err)
	}

	if dispatcher.IsEnabled() {
		deps.Alerter = dispatcher
	}

	monitor := monitoring.New(monitoring.Config{
		SampleInterval:   cfg.Monitor.SampleInterval,
		MemoryWindow:     cfg.Monitor.MemoryWindow,
		Retention:        cfg.Monitor.Retention,
		PruneInterval:    cfg.Monitor.PruneInterval,
		ProbeConcurrency: cfg.Monitor.ProbeConcurrency,
		DownThreshold:    cfg.Alerts.DownThreshold,
	}, deps)

	var opener monitoring.Opener
	if cfg.DBPath != "" {
		opener = func(context.Context) (db.Service, error) {
			return db.New(cfg.DBPath)
		}
	}

	// A failed bootstrap leaves the monitor running from memory.
	_ = monitor.Bootstrap(ctx, opener)

	apiServer := api.NewAPIServer(monitor, api.WithMetrics(reg))

	hooks := []lifecycle.ShutdownHook{func(context.Context) error {
		apiServer.Close()
		return nil
	}}

	if cfg.Consul.Addr != "" {
		registrar, err := registry.New(&cfg.Consul, cfg.ListenAddr, cfg.GrpcAddr)
		if err != nil {
			return fmt.Errorf("configure consul: %w", err)
		}

		go func() {
			if err := registrar.Register(ctx); err != nil {
				log.WithError(err).Error("Service registration abandoned")
			}
		}()

		hooks = append(hooks, registrar.Deregister)
	}

	log.WithFields(log.Fields{
		"panel":    cfg.Panel.URL,
		"interval": cfg.Monitor.SampleInterval.String(),
		"window":   cfg.Monitor.MemoryWindow.String(),
		"version":  version,
	}).Info("Configured node monitor")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		GRPCAddr:    cfg.GrpcAddr,
		ServiceName: monitoring.ServiceName,
		Handler:     apiServer,
		Service:     monitoring.NewService(monitor),
		Healthy: func() bool {
			return monitor.Status() == models.ServiceStatusOK
		},
		OnShutdown:      hooks,
		ShutdownTimeout: lifecycle.ShutdownTimeout,
	})
}
