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
	"fmt"

	"github.com/google/uuid"
	"github.com/mfreeman451/pterostatus/pkg/aggregate"
	"github.com/mfreeman451/pterostatus/pkg/alerts"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/mfreeman451/pterostatus/pkg/panel"
	"github.com/mfreeman451/pterostatus/pkg/probe"
	log "github.com/sirupsen/logrus"
)

// RunCycle fetches the inventory, probes every node once and records the
// results under a single cycle timestamp. A failed inventory fetch is recorded
// as the last error and leaves all other state untouched.
func (m *Monitor) RunCycle(ctx context.Context) error {
	if !m.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		m.recorder.CycleSkipped()

		return ErrCycleInProgress
	}
	defer m.state.Store(int32(stateIdle))

	cycleTime := m.clock()
	logger := log.WithField("cycle_id", uuid.NewString())

	nodes, err := m.lister.ListNodes(ctx)
	if err != nil {
		m.setLastError(inventoryMessage(err))
		m.recorder.InventoryFailed()

		logger.WithError(err).Warn("Node inventory fetch failed")

		return fmt.Errorf("%w: %w", errInventory, err)
	}

	outcomes := probe.ProbeAll(ctx, m.prober, nodes, m.cfg.ProbeConcurrency)

	seen := make(map[int]struct{}, len(outcomes))
	pending := make([]*alerts.WebhookAlert, 0)

	for i := range outcomes {
		o := &outcomes[i]
		seen[o.Node.ID] = struct{}{}

		sample := m.store.Append(ctx, &o.Node, &o.Result, cycleTime)
		m.recorder.ObserveProbe(&o.Result)

		if !o.Result.Online {
			logger.WithFields(log.Fields{
				"node_id": o.Node.ID,
				"node":    o.Node.DisplayName(),
				"error":   o.Result.ErrorString(),
			}).Debug("Node probe offline")
		}

		if alert := m.tracker.Observe(&o.Node, &sample); alert != nil {
			pending = append(pending, alert)
		}
	}

	m.store.MaybePrune(ctx, cycleTime)

	if dropped := m.store.Retain(seen); len(dropped) > 0 {
		m.tracker.Forget(dropped...)
		logger.WithField("nodes", dropped).Info("Dropped nodes no longer in inventory")
	}

	m.dispatch(ctx, pending)

	finished := m.clock()

	m.mu.Lock()
	m.lastError = nil
	m.lastUpdated = models.StringPtr(models.FormatTimestamp(finished))
	m.mu.Unlock()

	m.recorder.ObserveCycle(finished.Sub(cycleTime), len(nodes))
	m.recorder.SetNodeStatus(m.statusCounts())
	m.recorder.SetPersistence(m.store.PersistenceEnabled())

	logger.WithFields(log.Fields{
		"nodes":    len(nodes),
		"duration": finished.Sub(cycleTime).String(),
	}).Debug("Probe cycle complete")

	m.notify()

	return nil
}

// inventoryMessage prefers the panel's own error detail.
func inventoryMessage(err error) string {
	var apiErr *panel.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return "Unknown error"
}

// dispatch delivers alerts in the background so slow webhooks never hold up
// the cycle.
func (m *Monitor) dispatch(ctx context.Context, pending []*alerts.WebhookAlert) {
	if len(pending) == 0 || m.alerter == nil || !m.alerter.IsEnabled() {
		return
	}

	m.alertWG.Add(1)

	go func() {
		defer m.alertWG.Done()

		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.AlertTimeout)
		defer cancel()

		for _, alert := range pending {
			err := m.alerter.Alert(actx, alert)
			if err != nil && !errors.Is(err, alerts.ErrWebhookCooldown) {
				log.WithFields(log.Fields{
					"node_id": alert.NodeID,
					"title":   alert.Title,
				}).WithError(err).Warn("Failed to deliver alert")
			}
		}
	}()
}

func (m *Monitor) statusCounts() map[string]int {
	counts := make(map[string]int, 3)

	for _, entry := range m.store.Snapshot() {
		counts[aggregate.StatusLabel(&entry)]++
	}

	return counts
}

// WaitAlerts blocks until queued alert deliveries finish.
func (m *Monitor) WaitAlerts() {
	m.alertWG.Wait()
}
