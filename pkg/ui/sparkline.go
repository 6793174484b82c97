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
	sparklineBlocks = "▁▂▃▄▅▆▇█"
	sparklineGap    = '·'

	latencyWarnMs  = 150
	latencyErrorMs = 400
)

var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderLatencySparkline draws the last width samples scaled between their
// minimum and maximum latency. Samples without a latency are drawn as gaps.
// The color follows the most recent latency.
func RenderLatencySparkline(history []models.Sample, width int) string {
	if len(history) == 0 || width <= 0 {
		return ""
	}

	if len(history) > width {
		history = history[len(history)-width:]
	}

	var (
		minVal, maxVal int64
		last           *int64
	)

	for i := range history {
		v := history[i].LatencyMs
		if v == nil {
			continue
		}

		if last == nil || *v < minVal {
			minVal = *v
		}

		if last == nil || *v > maxVal {
			maxVal = *v
		}

		last = v
	}

	var sb strings.Builder

	sb.Grow(len(history) * 3)

	levels := len(sparklineBlockRunes)

	for i := range history {
		v := history[i].LatencyMs
		if v == nil {
			sb.WriteRune(sparklineGap)
			continue
		}

		level := levels / 2
		if maxVal > minVal {
			level = int(float64(*v-minVal) / float64(maxVal-minVal) * float64(levels-1))
		}

		sb.WriteRune(sparklineBlockRunes[level])
	}

	color := ColorMuted
	if last != nil {
		color = latencyColor(*last)
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

func latencyColor(ms int64) lipgloss.Color {
	switch {
	case ms >= latencyErrorMs:
		return ColorError
	case ms >= latencyWarnMs:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
