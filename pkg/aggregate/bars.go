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

package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	barSpan    = 4 * time.Hour
	minBars    = 48
	maxBars    = 180
	labelNone  = "No data"
	labelMixed = "Intermittent (up/down in this period)"
)

// BarCount returns the number of uptime bars for window.
func BarCount(window time.Duration) int {
	n := int(math.Round(float64(window) / float64(barSpan)))

	return min(maxBars, max(minBars, n))
}

type bucket struct {
	up, down int
}

// BuildUptimeBars partitions the window ending at now into BarCount buckets
// and classifies each one. Maintenance samples, samples without a timestamp
// and samples older than the window are ignored.
func BuildUptimeBars(samples []models.Sample, window time.Duration, now time.Time) []models.UptimeBar {
	count := BarCount(window)
	buckets := make([]bucket, count)

	windowMs := window.Milliseconds()
	windowStart := now.UnixMilli() - windowMs
	bucketSize := float64(windowMs) / float64(count)

	for i := range samples {
		s := &samples[i]
		if s.Maintenance || s.TS == 0 || s.TS < windowStart {
			continue
		}

		idx := 0
		if bucketSize > 0 {
			idx = int(math.Floor(float64(s.TS-windowStart) / bucketSize))
		}

		idx = min(count-1, max(0, idx))

		if s.Online {
			buckets[idx].up++
		} else {
			buckets[idx].down++
		}
	}

	bars := make([]models.UptimeBar, count)
	for i, b := range buckets {
		bars[i] = classify(b)
	}

	return bars
}

func classify(b bucket) models.UptimeBar {
	total := b.up + b.down
	if total == 0 {
		return models.UptimeBar{Level: models.BarNone, Label: labelNone}
	}

	uptime := float64(b.up) / float64(total)
	downRatio := float64(b.down) / float64(total)

	bar := models.UptimeBar{Uptime: &uptime, DownRatio: downRatio}

	switch {
	case b.down == 0:
		bar.Level = models.BarUp
	case b.up == 0:
		bar.Level = models.BarDown
	default:
		bar.Level = models.BarMixed
		bar.Label = labelMixed

		return bar
	}

	bar.Label = fmt.Sprintf("%d%% up / %d%% down",
		int(math.Round(uptime*100)), int(math.Round(downRatio*100)))

	return bar
}
