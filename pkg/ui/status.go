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

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	noValue           = "-"
	defaultSparkWidth = 30
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(ColorError)
)

// Overall returns the fleet headline and its color.
func Overall(nodes []models.NodeView) (string, lipgloss.Color) {
	var online, offline int

	for i := range nodes {
		switch nodes[i].StatusLabel {
		case models.StatusOffline:
			offline++
		default:
			online++
		}
	}

	switch {
	case offline > 0:
		return "Partial Outage", ColorError
	case online == len(nodes):
		return "All Systems Operational", ColorSuccess
	default:
		return "Checking", ColorWarning
	}
}

// RenderSummary prints the headline block: overall state, service health and
// the monitor's last update.
func RenderSummary(p *models.StatusPayload) string {
	var sb strings.Builder

	label, color := Overall(p.Nodes)
	symbol := SymbolUp

	if color == ColorError {
		symbol = SymbolWarning
	}

	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(color).Render(symbol + " " + label))
	sb.WriteString("\n")

	service := fmt.Sprintf("%s %s, up %s", p.Service, p.Status, models.FormatUptime(p.UptimeSeconds))
	if p.PersistenceEnabled {
		service += ", persistent"
	}

	sb.WriteString(mutedStyle.Render(service))
	sb.WriteString("\n")

	updated := noValue
	if p.Monitor.LastUpdated != nil {
		updated = *p.Monitor.LastUpdated
	}

	sb.WriteString(mutedStyle.Render(fmt.Sprintf("range %s, every %s, updated %s",
		p.Monitor.RangeLabel, models.FormatDuration(p.Monitor.SampleIntervalMs), updated)))
	sb.WriteString("\n")

	if p.Monitor.LastError != nil {
		sb.WriteString(errorStyle.Render(SymbolWarning + " " + *p.Monitor.LastError))
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderNodeTable prints one row per node with its uptime timeline.
func RenderNodeTable(p *models.StatusPayload) string {
	if len(p.Nodes) == 0 {
		return "No nodes found."
	}

	rows := make([][]string, 0, len(p.Nodes))
	for i := range p.Nodes {
		rows = append(rows, nodeRow(&p.Nodes[i]))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("", "NODE", "STATUS", "PING", "AVG", "UPTIME "+p.Monitor.RangeLabel, "DOWN", "TIMELINE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}

			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

func nodeRow(n *models.NodeView) []string {
	style := lipgloss.NewStyle().Foreground(StatusColor(n.StatusLabel))

	symbol := SymbolDown

	switch n.StatusLabel {
	case models.StatusOperational:
		symbol = SymbolUp
	case models.StatusMaintenance:
		symbol = SymbolMaint
	}

	if n.Checks == 0 {
		symbol = SymbolNoData
	}

	return []string{
		style.Render(symbol),
		n.Name,
		style.Render(n.StatusLabel),
		latency(n.LatencyMs),
		latency(n.AvgLatencyMs),
		n.UptimePercent + "%",
		fmt.Sprintf("%s (%d)", models.FormatDuration(n.DownDurationMs), n.DownIncidents),
		RenderUptimeBars(n.UptimeBars),
	}
}

// RenderNodeDetail prints a single node with its latency sparkline.
func RenderNodeDetail(n *models.NodeView, sparkWidth int) string {
	if sparkWidth <= 0 {
		sparkWidth = defaultSparkWidth
	}

	fqdn := n.FQDN
	if fqdn == "" {
		fqdn = "No FQDN"
	}

	style := lipgloss.NewStyle().Foreground(StatusColor(n.StatusLabel))

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s  %s\n", headerStyle.Render(n.Name), style.Render(n.StatusLabel))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("#%d %s  %.1f GB RAM  %.0f GB disk",
		n.ID, fqdn, float64(n.MemoryMB)/1024, float64(n.DiskMB)/1024)))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "uptime %s%% over %d checks, %d incidents, longest %s\n",
		n.UptimePercent, n.Checks, n.DownIncidents, models.FormatDuration(n.LongestDownMs))
	fmt.Fprintf(&sb, "ping %s  avg %s  %s\n", latency(n.LatencyMs), latency(n.AvgLatencyMs),
		RenderLatencySparkline(n.History, sparkWidth))
	sb.WriteString(RenderUptimeBars(n.UptimeBars))
	sb.WriteString("\n")

	return sb.String()
}

func latency(v *int64) string {
	if v == nil {
		return noValue
	}

	return fmt.Sprintf("%dms", *v)
}
