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
	"sort"
	"strings"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/aggregate"
	"github.com/mfreeman451/pterostatus/pkg/models"
)

// Stats returns the process health summary.
func (m *Monitor) Stats() models.ServiceStats {
	now := m.clock()

	return models.ServiceStats{
		Status:             m.Status(),
		Service:            ServiceName,
		UptimeSeconds:      int64(now.Sub(m.started) / time.Second),
		PID:                m.pid,
		PersistenceEnabled: m.store.PersistenceEnabled(),
		Timestamp:          models.FormatTimestamp(now),
	}
}

// Payload builds the full status document for window.
func (m *Monitor) Payload(ctx context.Context, window time.Duration) models.StatusPayload {
	stats := m.Stats()

	m.mu.RLock()
	info := models.MonitorInfo{
		SampleIntervalMs:   m.cfg.SampleInterval.Milliseconds(),
		RangeWindowMs:      window.Milliseconds(),
		RangeLabel:         models.RangeLabel(window),
		MaxRangeWindowMs:   m.cfg.Retention.Milliseconds(),
		LastUpdated:        m.lastUpdated,
		LastError:          m.lastError,
		PersistenceEnabled: stats.PersistenceEnabled,
	}
	m.mu.RUnlock()

	return models.StatusPayload{
		ServiceStats: stats,
		Monitor:      info,
		Nodes:        m.NodeViews(ctx, window),
	}
}

// NodeViews computes the view of every tracked node over window, sorted by
// name.
func (m *Monitor) NodeViews(ctx context.Context, window time.Duration) []models.NodeView {
	now := m.clock()
	entries := m.store.Snapshot()
	views := make([]models.NodeView, 0, len(entries))

	for i := range entries {
		samples := m.store.Query(ctx, entries[i].Node.ID, window, now)

		views = append(views, aggregate.ComputeNodeView(&entries[i], samples, aggregate.Options{
			Window:         window,
			SampleInterval: m.cfg.SampleInterval,
			Now:            now,
		}))
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := strings.ToLower(views[i].Name), strings.ToLower(views[j].Name)
		if a != b {
			return a < b
		}

		if views[i].Name != views[j].Name {
			return views[i].Name < views[j].Name
		}

		return views[i].ID < views[j].ID
	})

	return views
}
