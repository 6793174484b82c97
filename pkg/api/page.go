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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	overallOutage   = "Partial Outage"
	overallOK       = "All Systems Operational"
	overallChecking = "Checking…"
	placeholder     = "—"
)

type fleetSummary struct {
	Total        int
	Online       int
	Operational  int
	Maintenance  int
	Offline      int
	Availability int
	FleetUptime  string
	FleetPing    string
}

type pageBar struct {
	Level string
	Style template.CSS
	Title string
}

type pageNode struct {
	models.NodeView
	BadgeClass    string
	DotClass      string
	FQDNText      string
	RAM           string
	Disk          string
	Ping          string
	AvgPing       string
	Downtime      string
	LongestOutage string
	LastCheck     string
	Bars          []pageBar
}

type pageData struct {
	OverallClass    string
	OverallIcon     string
	OverallLabel    string
	LastChecked     string
	IntervalMs      int64
	IntervalSeconds int64
	StatusClass     string
	StatusText      string
	Uptime          string
	RangeLabel      string
	AxisStart       string
	Error           string
	Summary         fleetSummary
	Nodes           []pageNode
	Initial         template.JS
}

func summarize(nodes []models.NodeView) fleetSummary {
	s := fleetSummary{Total: len(nodes), FleetUptime: "0.00", FleetPing: placeholder}

	var uptimeSum float64

	var pingSum, pingCount int64

	for i := range nodes {
		switch nodes[i].StatusLabel {
		case models.StatusOperational:
			s.Operational++
		case models.StatusMaintenance:
			s.Maintenance++
		case models.StatusOffline:
			s.Offline++
		}

		var pct float64
		if _, err := fmt.Sscanf(nodes[i].UptimePercent, "%g", &pct); err == nil {
			uptimeSum += pct
		}

		if nodes[i].AvgLatencyMs != nil {
			pingSum += *nodes[i].AvgLatencyMs
			pingCount++
		}
	}

	s.Online = s.Operational + s.Maintenance

	if s.Total > 0 {
		s.Availability = int(math.Round(float64(s.Online) / float64(s.Total) * 100))
		s.FleetUptime = fmt.Sprintf("%.2f", uptimeSum/float64(s.Total))
	}

	if pingCount > 0 {
		s.FleetPing = fmt.Sprintf("%dms", int64(math.Round(float64(pingSum)/float64(pingCount))))
	}

	return s
}

func newPageData(payload *models.StatusPayload) (*pageData, error) {
	initial, err := initialState(payload)
	if err != nil {
		return nil, err
	}

	window := time.Duration(payload.Monitor.RangeWindowMs) * time.Millisecond
	summary := summarize(payload.Nodes)

	data := &pageData{
		OverallClass:    "overall-ok",
		OverallIcon:     "✅",
		OverallLabel:    overallChecking,
		LastChecked:     clockTime(payload.Monitor.LastUpdated),
		IntervalMs:      payload.Monitor.SampleIntervalMs,
		IntervalSeconds: payload.Monitor.SampleIntervalMs / 1000,
		StatusClass:     "value-warn",
		StatusText:      "Degraded",
		Uptime:          models.FormatUptime(payload.UptimeSeconds),
		RangeLabel:      payload.Monitor.RangeLabel,
		AxisStart:       formatAgo(window),
		Summary:         summary,
		Initial:         initial,
	}

	switch {
	case summary.Offline > 0:
		data.OverallClass = "overall-bad"
		data.OverallIcon = "⚠️"
		data.OverallLabel = overallOutage
	case summary.Online == summary.Total:
		data.OverallLabel = overallOK
	}

	if payload.Status == models.ServiceStatusOK {
		data.StatusClass = "value-ok"
		data.StatusText = "Online"
	}

	if payload.Monitor.LastError != nil {
		data.Error = *payload.Monitor.LastError
		return data, nil
	}

	data.Nodes = make([]pageNode, 0, len(payload.Nodes))
	for i := range payload.Nodes {
		data.Nodes = append(data.Nodes, newPageNode(&payload.Nodes[i], window))
	}

	return data, nil
}

func newPageNode(v *models.NodeView, window time.Duration) pageNode {
	n := pageNode{
		NodeView:      *v,
		BadgeClass:    "badge-bad",
		DotClass:      "dot-bad",
		FQDNText:      v.FQDN,
		RAM:           fmt.Sprintf("%.1f GB", float64(v.MemoryMB)/1024),
		Disk:          fmt.Sprintf("%.0f GB", float64(v.DiskMB)/1024),
		Ping:          formatMs(v.LatencyMs),
		AvgPing:       formatMs(v.AvgLatencyMs),
		Downtime:      models.FormatDuration(v.DownDurationMs),
		LongestOutage: models.FormatDuration(v.LongestDownMs),
		LastCheck:     clockTime(v.LastCheckedAt),
		Bars:          pageBars(v.UptimeBars, window),
	}

	switch v.StatusLabel {
	case models.StatusOperational:
		n.BadgeClass, n.DotClass = "badge-ok", "dot-ok"
	case models.StatusMaintenance:
		n.BadgeClass, n.DotClass = "badge-warn", "dot-warn"
	}

	if n.FQDNText == "" {
		n.FQDNText = "No FQDN"
	}

	return n
}

func pageBars(bars []models.UptimeBar, window time.Duration) []pageBar {
	out := make([]pageBar, len(bars))
	hours := window.Hours()

	for i := range bars {
		from := float64(i) * hours / float64(len(bars))
		to := float64(i+1) * hours / float64(len(bars))

		out[i] = pageBar{
			Level: bars[i].Level,
			Title: fmt.Sprintf("%.1fh-%.1fh - %s", from, to, bars[i].Label),
		}

		if bars[i].Level == models.BarMixed {
			pct := int(math.Round(bars[i].DownRatio * 100))
			out[i].Style = template.CSS(fmt.Sprintf(
				"background:linear-gradient(to top,var(--red) %d%%,var(--green) %d%%);", pct, pct))
		}
	}

	return out
}

// initialState serialises the payload for inline embedding. Every "<" is
// written as \u003c so the JSON can never close the surrounding script tag.
func initialState(payload *models.StatusPayload) (template.JS, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("%w: %w", errEncodePayload, err)
	}

	out := bytes.ReplaceAll(bytes.TrimRight(buf.Bytes(), "\n"), []byte("<"), []byte(`\u003c`))

	return template.JS(out), nil
}

func formatMs(v *int64) string {
	if v == nil {
		return placeholder
	}

	return fmt.Sprintf("%dms", *v)
}

func clockTime(iso *string) string {
	if iso == nil || *iso == "" {
		return placeholder
	}

	t, err := time.Parse(time.RFC3339Nano, *iso)
	if err != nil {
		return placeholder
	}

	return t.UTC().Format("15:04:05")
}

func formatAgo(window time.Duration) string {
	days := window.Hours() / 24

	switch {
	case days >= 60:
		return fmt.Sprintf("%dmo ago", int(math.Round(days/30)))
	case days >= 2:
		return fmt.Sprintf("%dd ago", int(math.Round(days)))
	default:
		return fmt.Sprintf("%dh ago", int(math.Round(window.Hours())))
	}
}
