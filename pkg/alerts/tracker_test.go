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

package alerts

import (
	"testing"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(at string, online, maint bool) *models.Sample {
	s := &models.Sample{At: at, Online: online, Maintenance: maint}
	if !online {
		s.Error = models.StringPtr("ETIMEDOUT")
	}

	return s
}

func TestTrackerRaisesAfterThreshold(t *testing.T) {
	tr := NewTracker(3)
	node := &models.Node{ID: 1, Name: "alpha", FQDN: "a.example.com"}

	assert.Nil(t, tr.Observe(node, sampleAt("t1", false, false)))
	assert.Nil(t, tr.Observe(node, sampleAt("t2", false, false)))

	alert := tr.Observe(node, sampleAt("t3", false, false))
	require.NotNil(t, alert)
	assert.Equal(t, Error, alert.Level)
	assert.Equal(t, TitleNodeOffline, alert.Title)
	assert.Equal(t, "t1", alert.Details["down_since"])
	assert.Equal(t, "ETIMEDOUT", alert.Details["error"])

	assert.Nil(t, tr.Observe(node, sampleAt("t4", false, false)), "only one alert per outage")

	recovered := tr.Observe(node, sampleAt("t5", true, false))
	require.NotNil(t, recovered)
	assert.Equal(t, Info, recovered.Level)
	assert.Equal(t, TitleNodeRecovered, recovered.Title)
	assert.Equal(t, "t5", recovered.Timestamp)

	assert.Nil(t, tr.Observe(node, sampleAt("t6", true, false)))
}

func TestTrackerShortBlipDoesNotAlert(t *testing.T) {
	tr := NewTracker(3)
	node := &models.Node{ID: 2}

	assert.Nil(t, tr.Observe(node, sampleAt("t1", false, false)))
	assert.Nil(t, tr.Observe(node, sampleAt("t2", false, false)))
	assert.Nil(t, tr.Observe(node, sampleAt("t3", true, false)))
	assert.Nil(t, tr.Observe(node, sampleAt("t4", false, false)))
}

func TestTrackerIgnoresMaintenance(t *testing.T) {
	tr := NewTracker(2)
	node := &models.Node{ID: 3}

	assert.Nil(t, tr.Observe(node, sampleAt("t1", false, false)))
	assert.Nil(t, tr.Observe(node, sampleAt("t2", false, true)))
	assert.Nil(t, tr.Observe(node, sampleAt("t3", true, true)))
	assert.NotNil(t, tr.Observe(node, sampleAt("t4", false, false)))
}

func TestTrackerForget(t *testing.T) {
	tr := NewTracker(0)
	node := &models.Node{ID: 4}

	for i := 0; i < DefaultDownThreshold-1; i++ {
		tr.Observe(node, sampleAt("t", false, false))
	}

	tr.Forget(4)

	assert.Nil(t, tr.Observe(node, sampleAt("t", false, false)))
}
