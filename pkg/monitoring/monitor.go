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

// Package monitoring owns the monitor's process state: the probe cycle, the
// scheduler driving it and the status payload built from its history.
package monitoring

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/alerts"
	"github.com/mfreeman451/pterostatus/pkg/db"
	"github.com/mfreeman451/pterostatus/pkg/history"
	"github.com/mfreeman451/pterostatus/pkg/metrics"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/mfreeman451/pterostatus/pkg/panel"
	"github.com/mfreeman451/pterostatus/pkg/probe"
	log "github.com/sirupsen/logrus"
)

// ServiceName is reported in every status payload.
const ServiceName = "web-monitor"

var (
	// ErrCycleInProgress is returned when a cycle is requested while another
	// one is still running.
	ErrCycleInProgress = errors.New("probe cycle already in progress")

	errInventory = errors.New("inventory fetch failed")
)

type cycleState int32

const (
	stateIdle cycleState = iota
	stateRunning
)

// Opener opens the durable history store.
type Opener func(ctx context.Context) (db.Service, error)

// Config holds the pacing settings of a Monitor.
type Config struct {
	SampleInterval   time.Duration
	MemoryWindow     time.Duration
	Retention        time.Duration
	PruneInterval    time.Duration
	ProbeConcurrency int
	DownThreshold    int
	AlertTimeout     time.Duration
}

func (c *Config) setDefaults() {
	if c.SampleInterval <= 0 {
		c.SampleInterval = 4 * time.Second
	}

	if c.MemoryWindow <= 0 {
		c.MemoryWindow = history.DefaultMemoryWindow
	}

	if c.Retention <= 0 {
		c.Retention = history.DefaultRetention
	}

	if c.PruneInterval <= 0 {
		c.PruneInterval = history.DefaultPruneInterval
	}

	if c.AlertTimeout <= 0 {
		c.AlertTimeout = 15 * time.Second
	}
}

// Deps are the collaborators of a Monitor. Alerter and Recorder are optional.
type Deps struct {
	Lister   panel.NodeLister
	Prober   probe.Prober
	Alerter  alerts.AlertService
	Recorder metrics.Recorder
	Clock    func() time.Time
}

// Monitor is the single owner of the monitor's mutable state. The probe cycle
// and the request handlers share it by reference.
type Monitor struct {
	cfg      Config
	store    *history.Store
	lister   panel.NodeLister
	prober   probe.Prober
	alerter  alerts.AlertService
	tracker  *alerts.Tracker
	recorder metrics.Recorder
	clock    func() time.Time
	started  time.Time
	pid      int

	state atomic.Int32

	mu          sync.RWMutex
	lastError   *string
	lastUpdated *string

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int

	alertWG sync.WaitGroup
}

// New creates a monitor with an in-memory history store.
func New(cfg Config, deps Deps) *Monitor {
	cfg.setDefaults()

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	recorder := deps.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	store := history.NewStore(history.Options{
		MemoryWindow:  cfg.MemoryWindow,
		Retention:     cfg.Retention,
		PruneInterval: cfg.PruneInterval,
		OnWriteError: func(error) {
			recorder.DurableWriteFailed()
		},
	})

	return &Monitor{
		cfg:       cfg,
		store:     store,
		lister:    deps.Lister,
		prober:    deps.Prober,
		alerter:   deps.Alerter,
		tracker:   alerts.NewTracker(cfg.DownThreshold),
		recorder:  recorder,
		clock:     clock,
		started:   clock(),
		pid:       os.Getpid(),
		listeners: make(map[int]func()),
	}
}

// Bootstrap opens the durable store and loads recent history from it. On
// failure the monitor keeps running from memory with persistence disabled and
// the failure recorded as the last error.
func (m *Monitor) Bootstrap(ctx context.Context, open Opener) error {
	if open == nil {
		m.recorder.SetPersistence(false)

		return nil
	}

	svc, err := open(ctx)

	var lastAt *string
	if err == nil {
		lastAt, err = m.store.Init(ctx, svc, m.clock())
		if err != nil {
			if closeErr := svc.Close(); closeErr != nil {
				log.WithError(closeErr).Warn("Failed to close durable store")
			}
		}
	}

	if err != nil {
		m.setLastError(err.Error())
		m.recorder.SetPersistence(false)

		log.WithError(err).Error("Durable history unavailable, continuing in memory")

		return err
	}

	if lastAt != nil {
		m.mu.Lock()
		m.lastUpdated = lastAt
		m.mu.Unlock()
	}

	m.recorder.SetPersistence(true)

	return nil
}

// Store exposes the history store.
func (m *Monitor) Store() *history.Store {
	return m.store
}

// Config returns the effective configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

// LastError returns the last cycle or bootstrap error, if any.
func (m *Monitor) LastError() *string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastError
}

// LastUpdated returns when the last cycle completed.
func (m *Monitor) LastUpdated() *string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastUpdated
}

// Status is ok while no error is recorded and degraded otherwise.
func (m *Monitor) Status() string {
	if m.LastError() != nil {
		return models.ServiceStatusDegraded
	}

	return models.ServiceStatusOK
}

// Running reports whether a cycle is in flight.
func (m *Monitor) Running() bool {
	return cycleState(m.state.Load()) == stateRunning
}

func (m *Monitor) setLastError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = models.StringPtr(msg)
}

// Subscribe registers fn to run after every completed cycle and returns a
// function removing it.
func (m *Monitor) Subscribe(fn func()) func() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()

		delete(m.listeners, id)
	}
}

func (m *Monitor) notify() {
	m.listenerMu.Lock()
	fns := make([]func(), 0, len(m.listeners))

	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.listenerMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close waits for pending alert deliveries and closes the history store.
func (m *Monitor) Close() error {
	m.alertWG.Wait()

	return m.store.Close()
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(*models.ProbeResult) {}
func (nopRecorder) ObserveCycle(time.Duration, int) {}
func (nopRecorder) CycleSkipped() {}
func (nopRecorder) InventoryFailed() {}
func (nopRecorder) DurableWriteFailed() {}
func (nopRecorder) SetNodeStatus(map[string]int) {}
func (nopRecorder) SetPersistence(bool) {}
