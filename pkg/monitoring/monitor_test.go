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

package monitoring

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/alerts"
	"github.com/mfreeman451/pterostatus/pkg/db"
	"github.com/mfreeman451/pterostatus/pkg/metrics"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/mfreeman451/pterostatus/pkg/panel"
	"github.com/mfreeman451/pterostatus/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const interval = 4 * time.Second

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

type harness struct {
	monitor *Monitor
	lister  *panel.MockNodeLister
	prober  *probe.MockProber
	clock   *fakeClock
}

func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)

	h := &harness{
		lister: panel.NewMockNodeLister(ctrl),
		prober: probe.NewMockProber(ctrl),
		clock:  newFakeClock(),
	}

	deps.Lister = h.lister
	deps.Prober = h.prober
	deps.Clock = h.clock.Now

	h.monitor = New(Config{SampleInterval: interval, DownThreshold: 3}, deps)

	return h
}

// byNode answers probes from a per-node result table.
func byNode(results map[int]models.ProbeResult) func(context.Context, *models.Node) models.ProbeResult {
	return func(_ context.Context, n *models.Node) models.ProbeResult {
		return results[n.ID]
	}
}

func healthy(ms int64) models.ProbeResult {
	return models.ProbeResult{Online: true, LatencyMs: models.Int64Ptr(ms), StatusCode: 200}
}

func refused() models.ProbeResult {
	return models.ProbeResult{Error: models.StringPtr("ECONNREFUSED")}
}

func (h *harness) cycles(t *testing.T, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if i > 0 {
			h.clock.Advance(interval)
		}

		require.NoError(t, h.monitor.RunCycle(context.Background()))
	}
}

func viewByID(views []models.NodeView, id int) models.NodeView {
	for _, v := range views {
		if v.ID == id {
			return v
		}
	}

	return models.NodeView{}
}

func TestHealthyAndRefusingNodes(t *testing.T) {
	h := newHarness(t, Deps{})

	nodes := []models.Node{{ID: 1, Name: "alpha"}, {ID: 2, Name: "bravo"}}
	h.lister.EXPECT().ListNodes(gomock.Any()).Return(nodes, nil).Times(10)
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).
		DoAndReturn(byNode(map[int]models.ProbeResult{1: healthy(40), 2: refused()})).Times(20)

	h.cycles(t, 10)

	p := h.monitor.Payload(context.Background(), models.Range24h)

	assert.Equal(t, models.ServiceStatusOK, p.Status)
	assert.Equal(t, ServiceName, p.Service)
	require.Len(t, p.Nodes, 2)

	a := viewByID(p.Nodes, 1)
	assert.Equal(t, "100.00", a.UptimePercent)
	assert.Zero(t, a.DownIncidents)
	assert.Equal(t, 10, a.Checks)
	assert.Equal(t, int64(40), *a.AvgLatencyMs)

	b := viewByID(p.Nodes, 2)
	assert.Equal(t, "0.00", b.UptimePercent)
	assert.Equal(t, 1, b.DownIncidents)
	assert.Equal(t, 9*interval.Milliseconds(), b.LongestDownMs)
	assert.Equal(t, models.StatusOffline, b.StatusLabel)
}

func TestMaintenanceNodeIsExcludedFromUptime(t *testing.T) {
	h := newHarness(t, Deps{})

	nodes := []models.Node{{ID: 3, Name: "maint", Maintenance: true}}
	h.lister.EXPECT().ListNodes(gomock.Any()).Return(nodes, nil).Times(5)

	calls := 0
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *models.Node) models.ProbeResult {
			calls++
			if calls%2 == 0 {
				return refused()
			}

			return healthy(10)
		}).Times(5)

	h.cycles(t, 5)

	v := h.monitor.Payload(context.Background(), models.Range24h).Nodes[0]

	assert.Equal(t, models.StatusMaintenance, v.StatusLabel)
	assert.Zero(t, v.Checks)
	assert.Equal(t, "0.00", v.UptimePercent)
	assert.Zero(t, v.DownIncidents)
}

func TestLongRangeWithShortDurableHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Deps{})

	path := filepath.Join(t.TempDir(), "history.sqlite")

	seed, err := db.New(path)
	require.NoError(t, err)

	start := h.clock.Now().Add(-2 * time.Hour)
	for i := 0; i < 120; i++ {
		ts := start.Add(time.Duration(i) * time.Minute)
		require.NoError(t, seed.InsertSample(ctx, &db.SampleRecord{
			NodeID:   7,
			NodeName: "seeded",
			Sample: models.Sample{
				TS:        ts.UnixMilli(),
				At:        models.FormatTimestamp(ts),
				Online:    true,
				LatencyMs: models.Int64Ptr(12),
			},
		}))
	}

	require.NoError(t, seed.Close())

	require.NoError(t, h.monitor.Bootstrap(ctx, func(context.Context) (db.Service, error) {
		return db.New(path)
	}))
	t.Cleanup(func() { _ = h.monitor.Close() })

	p := h.monitor.Payload(ctx, models.Range7d)

	assert.True(t, p.PersistenceEnabled)
	assert.True(t, p.Monitor.PersistenceEnabled)
	assert.Equal(t, models.RangeLabel7d, p.Monitor.RangeLabel)
	assert.Equal(t, models.Range7d.Milliseconds(), p.Monitor.RangeWindowMs)
	require.NotNil(t, p.Monitor.LastUpdated)
	assert.Equal(t, models.FormatTimestamp(start.Add(119*time.Minute)), *p.Monitor.LastUpdated)

	require.Len(t, p.Nodes, 1)
	assert.Equal(t, "seeded", p.Nodes[0].Name)
	assert.Equal(t, 120, p.Nodes[0].Checks)
	assert.Equal(t, "100.00", p.Nodes[0].UptimePercent)
}

func TestBootstrapFailureKeepsMonitoringInMemory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, Deps{})

	err := h.monitor.Bootstrap(ctx, func(context.Context) (db.Service, error) {
		return nil, errors.New("unable to open database file")
	})
	require.Error(t, err)

	p := h.monitor.Payload(ctx, models.Range24h)
	assert.False(t, p.PersistenceEnabled)
	assert.Equal(t, models.ServiceStatusDegraded, p.Status)
	assert.Equal(t, "unable to open database file", *p.Monitor.LastError)

	h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 1, Name: "a"}}, nil).Times(4)

	results := []models.ProbeResult{healthy(5), refused(), healthy(5), healthy(5)}
	i := 0
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *models.Node) models.ProbeResult {
			r := results[i]
			i++

			return r
		}).Times(4)

	h.cycles(t, 4)

	for _, window := range []time.Duration{models.Range24h, models.Range7d} {
		p = h.monitor.Payload(ctx, window)

		assert.False(t, p.PersistenceEnabled)
		assert.Nil(t, p.Monitor.LastError)
		assert.Equal(t, "75.00", p.Nodes[0].UptimePercent)
		assert.Equal(t, 1, p.Nodes[0].DownIncidents)
		assert.Equal(t, interval.Milliseconds(), p.Nodes[0].LongestDownMs)
	}
}

func TestBootstrapInitFailureClosesStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := newHarness(t, Deps{})

	svc := db.NewMockService(ctrl)
	svc.EXPECT().PruneBefore(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("disk I/O error"))
	svc.EXPECT().Close().Return(nil)

	err := h.monitor.Bootstrap(context.Background(), func(context.Context) (db.Service, error) {
		return svc, nil
	})
	require.Error(t, err)
	assert.False(t, h.monitor.Store().PersistenceEnabled())
	assert.Equal(t, "disk I/O error", *h.monitor.LastError())
}

func TestInventoryFailureKeepsState(t *testing.T) {
	h := newHarness(t, Deps{})

	h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 1, Name: "a"}}, nil)
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(healthy(9))
	h.cycles(t, 1)

	updated := h.monitor.LastUpdated()
	require.NotNil(t, updated)

	h.clock.Advance(interval)
	h.lister.EXPECT().ListNodes(gomock.Any()).Return(nil, &panel.APIError{StatusCode: 403, Detail: "This action is unauthorized."})

	err := h.monitor.RunCycle(context.Background())
	require.Error(t, err)

	assert.Equal(t, "This action is unauthorized.", *h.monitor.LastError())
	assert.Equal(t, updated, h.monitor.LastUpdated())
	assert.Equal(t, models.ServiceStatusDegraded, h.monitor.Status())
	assert.Len(t, h.monitor.Store().Snapshot(), 1)

	entry, _ := h.monitor.Store().Entry(1)
	assert.Len(t, entry.History, 1)
}

func TestStaleNodesAreDropped(t *testing.T) {
	h := newHarness(t, Deps{})

	gomock.InOrder(
		h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 1}, {ID: 2}}, nil),
		h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 2}}, nil),
	)
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(healthy(1)).Times(3)

	h.cycles(t, 2)

	snap := h.monitor.Store().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2, snap[0].Node.ID)
}

func TestCycleSharesTimestamp(t *testing.T) {
	h := newHarness(t, Deps{})

	h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *models.Node) models.ProbeResult {
			h.clock.Advance(time.Second)

			return healthy(1)
		}).Times(3)

	cycleStart := h.clock.Now()
	h.cycles(t, 1)

	for _, e := range h.monitor.Store().Snapshot() {
		require.Len(t, e.History, 1)
		assert.Equal(t, cycleStart.UnixMilli(), e.History[0].TS)
	}

	assert.Equal(t, models.FormatTimestamp(h.clock.Now()), *h.monitor.LastUpdated())
}

func TestConcurrentCycleIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := metrics.NewMockRecorder(ctrl)
	rec.EXPECT().CycleSkipped()
	rec.EXPECT().ObserveProbe(gomock.Any()).AnyTimes()
	rec.EXPECT().ObserveCycle(gomock.Any(), 1)
	rec.EXPECT().SetNodeStatus(map[string]int{models.StatusOperational: 1})
	rec.EXPECT().SetPersistence(false)

	h := newHarness(t, Deps{Recorder: rec})

	entered := make(chan struct{})
	release := make(chan struct{})

	h.lister.EXPECT().ListNodes(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Node, error) {
		close(entered)
		<-release

		return []models.Node{{ID: 1}}, nil
	})
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(healthy(2))

	done := make(chan error, 1)

	go func() { done <- h.monitor.RunCycle(context.Background()) }()

	<-entered
	assert.True(t, h.monitor.Running())
	assert.ErrorIs(t, h.monitor.RunCycle(context.Background()), ErrCycleInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, h.monitor.Running())
}

func TestOutageAlertsAreDispatched(t *testing.T) {
	ctrl := gomock.NewController(t)
	alerter := alerts.NewMockAlertService(ctrl)
	alerter.EXPECT().IsEnabled().Return(true).AnyTimes()

	var (
		mu  sync.Mutex
		got []string
	)

	alerter.EXPECT().Alert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *alerts.WebhookAlert) error {
			mu.Lock()
			defer mu.Unlock()

			got = append(got, a.Title)

			return nil
		}).Times(2)

	h := newHarness(t, Deps{Alerter: alerter})

	h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{{ID: 4, Name: "delta"}}, nil).Times(5)

	results := []models.ProbeResult{refused(), refused(), refused(), refused(), healthy(3)}
	i := 0
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *models.Node) models.ProbeResult {
			r := results[i]
			i++

			return r
		}).Times(5)

	h.cycles(t, 5)
	h.monitor.WaitAlerts()

	mu.Lock()
	defer mu.Unlock()

	assert.ElementsMatch(t, []string{alerts.TitleNodeOffline, alerts.TitleNodeRecovered}, got)
}

func TestNodeViewsSortedByName(t *testing.T) {
	h := newHarness(t, Deps{})

	h.lister.EXPECT().ListNodes(gomock.Any()).Return([]models.Node{
		{ID: 1, Name: "charlie"}, {ID: 2, Name: "Bravo"}, {ID: 3, Name: "alpha"}, {ID: 4, Name: "bravo"},
	}, nil)
	h.prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(healthy(1)).Times(4)

	h.cycles(t, 1)

	var names []string
	for _, v := range h.monitor.NodeViews(context.Background(), models.Range24h) {
		names = append(names, v.Name)
	}

	assert.Equal(t, []string{"alpha", "Bravo", "bravo", "charlie"}, names)
}

func TestSubscribersAreNotified(t *testing.T) {
	h := newHarness(t, Deps{})

	h.lister.EXPECT().ListNodes(gomock.Any()).Return(nil, nil).Times(2)

	calls := 0
	cancel := h.monitor.Subscribe(func() { calls++ })

	h.cycles(t, 1)
	cancel()
	h.cycles(t, 1)

	assert.Equal(t, 1, calls)
}

func TestStatsUptime(t *testing.T) {
	h := newHarness(t, Deps{})

	h.clock.Advance(90*time.Second + 500*time.Millisecond)

	stats := h.monitor.Stats()
	assert.Equal(t, int64(90), stats.UptimeSeconds)
	assert.Positive(t, stats.PID)
	assert.Equal(t, models.FormatTimestamp(h.clock.Now()), stats.Timestamp)
}
