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

package models

import (
	"strings"
	"time"
)

const (
	StatusOperational = "Operational"
	StatusMaintenance = "Maintenance"
	StatusOffline     = "Offline"
)

const (
	BarNone  = "none"
	BarUp    = "up"
	BarDown  = "down"
	BarMixed = "mixed"
)

const (
	Range24h = 24 * time.Hour
	Range7d  = 7 * 24 * time.Hour

	RangeLabel24h = "24h"
	RangeLabel7d  = "7d"
)

// ResolveRange maps a range selector to its window. Unknown or empty values
// fall back to 24h.
func ResolveRange(raw string) (window time.Duration, label string) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RangeLabel7d:
		return Range7d, RangeLabel7d
	default:
		return Range24h, RangeLabel24h
	}
}

// RangeLabel returns the label shown for a window.
func RangeLabel(window time.Duration) string {
	if window >= Range7d {
		return RangeLabel7d
	}

	return RangeLabel24h
}

// UptimeBar summarises one time bucket of the uptime timeline.
type UptimeBar struct {
	Level     string   `json:"level"`
	Uptime    *float64 `json:"uptime"`
	DownRatio float64  `json:"downRatio"`
	Label     string   `json:"label"`
}

// NodeView is the request-time projection of a node and its windowed history.
type NodeView struct {
	ID             int         `json:"id"`
	Name           string      `json:"name"`
	FQDN           string      `json:"fqdn"`
	MemoryMB       int64       `json:"memoryMb"`
	DiskMB         int64       `json:"diskMb"`
	Maintenance    bool        `json:"maintenance"`
	Online         bool        `json:"online"`
	LatencyMs      *int64      `json:"latencyMs"`
	LastCheckedAt  *string     `json:"lastCheckedAt"`
	StatusLabel    string      `json:"statusLabel"`
	UptimePercent  string      `json:"uptimePercent"`
	Checks         int         `json:"checks"`
	DownDurationMs int64       `json:"downDurationMs"`
	DownIncidents  int         `json:"downIncidents"`
	LongestDownMs  int64       `json:"longestDownMs"`
	UptimeBars     []UptimeBar `json:"uptimeBars"`
	AvgLatencyMs   *int64      `json:"avgLatencyMs"`
	History        []Sample    `json:"history"`
}

// MonitorInfo describes the monitor itself in the status payload.
type MonitorInfo struct {
	SampleIntervalMs   int64   `json:"sampleIntervalMs"`
	RangeWindowMs      int64   `json:"rangeWindowMs"`
	RangeLabel         string  `json:"rangeLabel"`
	MaxRangeWindowMs   int64   `json:"maxRangeWindowMs"`
	LastUpdated        *string `json:"lastUpdated"`
	LastError          *string `json:"lastError"`
	PersistenceEnabled bool    `json:"persistenceEnabled"`
}

// ServiceStats is the process health summary.
type ServiceStats struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	UptimeSeconds      int64  `json:"uptimeSeconds"`
	PID                int    `json:"pid"`
	PersistenceEnabled bool   `json:"persistenceEnabled"`
	Timestamp          string `json:"timestamp"`
}

const (
	ServiceStatusOK       = "ok"
	ServiceStatusDegraded = "degraded"
)

// StatusPayload is the body of GET /api/status and the page's initial state.
type StatusPayload struct {
	ServiceStats
	Monitor MonitorInfo `json:"monitor"`
	Nodes   []NodeView  `json:"nodes"`
}
