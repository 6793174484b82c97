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

// Package aggregate turns a node's windowed probe history into the view shown
// on the status page. Everything here is pure: no I/O, no shared state.
package aggregate

import (
	"fmt"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	DefaultSampleInterval = 4 * time.Second

	// RecentLatencySamples caps the samples averaged into avgLatencyMs.
	RecentLatencySamples = 30
)

// Options carries the request-time parameters of a view.
type Options struct {
	Window         time.Duration
	SampleInterval time.Duration
	Now            time.Time
	// MaxPoints overrides MaxPointsFor(Window) when positive.
	MaxPoints int
}

// ComputeNodeView builds the view of entry over history. Metrics use the raw
// windowed samples; only the returned history is downsampled.
func ComputeNodeView(entry *models.NodeEntry, history []models.Sample, opts Options) models.NodeView {
	interval := opts.SampleInterval
	if interval <= 0 {
		interval = DefaultSampleInterval
	}

	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = MaxPointsFor(opts.Window)
	}

	total, up := 0, 0

	for i := range history {
		if history[i].Maintenance {
			continue
		}

		total++

		if history[i].Online {
			up++
		}
	}

	incidents, longest := DetectIncidents(history, opts.Now)

	name := entry.Node.Name
	if name == "" {
		name = entry.Node.DisplayName()
	}

	return models.NodeView{
		ID:             entry.Node.ID,
		Name:           name,
		FQDN:           entry.Node.FQDN,
		MemoryMB:       entry.Node.MemoryMB,
		DiskMB:         entry.Node.DiskMB,
		Maintenance:    entry.Node.Maintenance,
		Online:         entry.Online,
		LatencyMs:      entry.LatencyMs,
		LastCheckedAt:  entry.LastCheckedAt,
		StatusLabel:    StatusLabel(entry),
		UptimePercent:  UptimePercent(up, total),
		Checks:         total,
		DownDurationMs: int64(total-up) * interval.Milliseconds(),
		DownIncidents:  incidents,
		LongestDownMs:  longest,
		UptimeBars:     BuildUptimeBars(history, opts.Window, opts.Now),
		AvgLatencyMs:   AverageLatency(history, RecentLatencySamples),
		History:        Downsample(history, maxPoints),
	}
}

// StatusLabel reflects the node's current state, not the window average.
func StatusLabel(entry *models.NodeEntry) string {
	switch {
	case entry.Node.Maintenance:
		return models.StatusMaintenance
	case entry.Online:
		return models.StatusOperational
	default:
		return models.StatusOffline
	}
}

// UptimePercent formats up/total with two decimals, "0.00" when total is zero.
func UptimePercent(up, total int) string {
	if total == 0 {
		return "0.00"
	}

	return fmt.Sprintf("%.2f", float64(up)*100/float64(total))
}

// DetectIncidents counts transitions into offline among non-maintenance
// samples and returns the longest incident in milliseconds. An incident still
// open at the end of the history is measured against now.
func DetectIncidents(samples []models.Sample, now time.Time) (count int, longestMs int64) {
	var (
		open    bool
		startTS int64
	)

	for i := range samples {
		s := &samples[i]
		if s.Maintenance {
			continue
		}

		switch {
		case !s.Online && !open:
			open = true
			startTS = s.TS
			count++
		case s.Online && open:
			longestMs = max(longestMs, s.TS-startTS)
			open = false
		}
	}

	if open {
		longestMs = max(longestMs, now.UnixMilli()-startTS)
	}

	return count, longestMs
}
