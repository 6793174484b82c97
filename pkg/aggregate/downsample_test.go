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
	"testing"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxPointsFor(t *testing.T) {
	assert.Equal(t, 260, MaxPointsFor(models.Range24h))
	assert.Equal(t, 260, MaxPointsFor(time.Hour))
	assert.Equal(t, 360, MaxPointsFor(models.Range7d))
}

func TestDownsampleIdentityWhenSmall(t *testing.T) {
	in := series(5, time.Second, func(int) models.Sample { return up(1) })

	assert.Equal(t, in, Downsample(in, 5))
	assert.Nil(t, Downsample(nil, 260))
}

func TestDownsampleChunks(t *testing.T) {
	// chunk size ceil(7/3) = 3: [u10 u21 d] [d d u30] [u40]
	in := series(7, time.Second, func(i int) models.Sample {
		switch i {
		case 0:
			return up(10)
		case 1:
			return up(21)
		case 5:
			return up(30)
		case 6:
			return up(40)
		case 4:
			return models.Sample{Online: false}
		default:
			return down()
		}
	})

	out := Downsample(in, 3)
	require.Len(t, out, 3)

	assert.True(t, out[0].Online)
	assert.Equal(t, in[2].TS, out[0].TS)
	assert.Equal(t, in[2].At, out[0].At)
	assert.Equal(t, int64(16), *out[0].LatencyMs, "mean of 10 and 21 rounds half up")
	assert.Nil(t, out[0].Error)

	assert.False(t, out[1].Online)
	assert.Nil(t, out[1].LatencyMs)
	assert.Equal(t, "downsampled_down", *out[1].Error, "last sample of the chunk carries no error")

	assert.True(t, out[2].Online)
	assert.Equal(t, int64(40), *out[2].LatencyMs)
}

func TestDownsampleTieFavoursOnline(t *testing.T) {
	in := series(4, time.Second, func(i int) models.Sample {
		if i%2 == 0 {
			return down()
		}

		s := up(50)
		s.Maintenance = i == 3

		return s
	})

	out := Downsample(in, 2)
	require.Len(t, out, 2)

	for _, p := range out {
		assert.True(t, p.Online)
	}

	assert.Equal(t, int64(50), *out[0].LatencyMs)
	assert.Nil(t, out[1].LatencyMs, "maintenance latency is not averaged")
	assert.True(t, out[1].Maintenance)
}

func TestDownsampleKeepsLastError(t *testing.T) {
	in := series(4, time.Second, func(int) models.Sample { return down() })
	in[3].Error = models.StringPtr("ETIMEDOUT")

	out := Downsample(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "ECONNREFUSED", *out[0].Error)
	assert.Equal(t, "ETIMEDOUT", *out[1].Error)
}

func TestAverageLatency(t *testing.T) {
	assert.Nil(t, AverageLatency(nil, 30))

	var in []models.Sample
	for i := 0; i < 40; i++ {
		in = append(in, up(int64(i)))
	}

	in = append(in, down(), models.Sample{Online: true, Maintenance: true, LatencyMs: models.Int64Ptr(9999)})

	// most recent 30 qualifying latencies are 10..39
	require.NotNil(t, AverageLatency(in, 30))
	assert.Equal(t, int64(25), *AverageLatency(in, 30))
}
