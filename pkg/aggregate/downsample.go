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
	"math"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	MaxPoints24h = 260
	MaxPoints7d  = 360

	downsampledDown = "downsampled_down"
)

// MaxPointsFor returns the history point budget of a window.
func MaxPointsFor(window time.Duration) int {
	if window >= models.Range7d {
		return MaxPoints7d
	}

	return MaxPoints24h
}

// AverageLatency is the rounded mean latency of the most recent limit online,
// non-maintenance samples that carry one. It returns nil when none qualify.
func AverageLatency(samples []models.Sample, limit int) *int64 {
	var sum, n int64

	for i := len(samples) - 1; i >= 0 && (limit <= 0 || n < int64(limit)); i-- {
		s := &samples[i]
		if !s.Online || s.Maintenance || s.LatencyMs == nil {
			continue
		}

		sum += *s.LatencyMs
		n++
	}

	if n == 0 {
		return nil
	}

	return models.Int64Ptr(int64(math.Round(float64(sum) / float64(n))))
}

// Downsample compresses samples into at most maxPoints points. Each point
// stands for a chunk of ceil(len/maxPoints) samples and takes the timestamp of
// the chunk's last sample. A chunk is online when online samples are at least
// as many as offline ones.
func Downsample(samples []models.Sample, maxPoints int) []models.Sample {
	if maxPoints <= 0 || len(samples) <= maxPoints {
		return samples
	}

	size := (len(samples) + maxPoints - 1) / maxPoints
	out := make([]models.Sample, 0, (len(samples)+size-1)/size)

	for start := 0; start < len(samples); start += size {
		out = append(out, reduceChunk(samples[start:min(start+size, len(samples))]))
	}

	return out
}

func reduceChunk(chunk []models.Sample) models.Sample {
	last := chunk[len(chunk)-1]

	var (
		down       int
		latencySum int64
		latencyN   int64
	)

	for i := range chunk {
		s := &chunk[i]
		if !s.Online {
			down++

			continue
		}

		if !s.Maintenance && s.LatencyMs != nil {
			latencySum += *s.LatencyMs
			latencyN++
		}
	}

	online := len(chunk)-down >= down

	point := models.Sample{
		TS:          last.TS,
		At:          last.At,
		Online:      online,
		Maintenance: last.Maintenance,
	}

	if online {
		if latencyN > 0 {
			point.LatencyMs = models.Int64Ptr(int64(math.Round(float64(latencySum) / float64(latencyN))))
		}

		return point
	}

	if last.Error != nil && *last.Error != "" {
		point.Error = models.StringPtr(*last.Error)
	} else {
		point.Error = models.StringPtr(downsampledDown)
	}

	return point
}
