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

// Package ui renders status payloads for the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mfreeman451/pterostatus/pkg/models"
)

// ANSI palette.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorInfo    lipgloss.Color = "6"
	ColorMuted   lipgloss.Color = "8"
)

const (
	SymbolUp      = "●"
	SymbolDown    = "✗"
	SymbolMaint   = "◐"
	SymbolNoData  = "○"
	SymbolWarning = "⚠"
)

// StatusColor maps a node status label to its color.
func StatusColor(label string) lipgloss.Color {
	switch label {
	case models.StatusOperational:
		return ColorSuccess
	case models.StatusMaintenance:
		return ColorWarning
	default:
		return ColorError
	}
}
