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
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	barFull  = "█"
	barMixed = "▆"
	barEmpty = "░"
)

var (
	barUpStyle    = lipgloss.NewStyle().Foreground(ColorSuccess)
	barDownStyle  = lipgloss.NewStyle().Foreground(ColorError)
	barMixedStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	barNoneStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// RenderUptimeBars draws one cell per bucket, oldest first.
func RenderUptimeBars(bars []models.UptimeBar) string {
	var sb strings.Builder

	for _, bar := range bars {
		switch bar.Level {
		case models.BarUp:
			sb.WriteString(barUpStyle.Render(barFull))
		case models.BarDown:
			sb.WriteString(barDownStyle.Render(barFull))
		case models.BarMixed:
			sb.WriteString(barMixedStyle.Render(barMixed))
		default:
			sb.WriteString(barNoneStyle.Render(barEmpty))
		}
	}

	return sb.String()
}
