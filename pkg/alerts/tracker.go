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
	"fmt"
	"sync"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	TitleNodeOffline   = "Node Offline"
	TitleNodeRecovered = "Node Recovered"

	DefaultDownThreshold = 3
)

type nodeState struct {
	down    int
	alerted bool
	downAt  string
}

// Tracker turns the per-node sample stream into outage and recovery alerts.
// A node alerts once it has been offline for threshold consecutive samples
// outside maintenance, and alerts again when it next answers.
type Tracker struct {
	mu        sync.Mutex
	threshold int
	nodes     map[int]*nodeState
}

// NewTracker creates a tracker. A threshold below one uses the default.
func NewTracker(threshold int) *Tracker {
	if threshold < 1 {
		threshold = DefaultDownThreshold
	}

	return &Tracker{
		threshold: threshold,
		nodes:     make(map[int]*nodeState),
	}
}

// Observe records one sample and returns the alert it triggers, if any.
// Maintenance samples leave the node's state untouched.
func (t *Tracker) Observe(node *models.Node, sample *models.Sample) *WebhookAlert {
	if sample.Maintenance {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.nodes[node.ID]
	if !ok {
		st = &nodeState{}
		t.nodes[node.ID] = st
	}

	if sample.Online {
		wasAlerted := st.alerted
		since := st.downAt
		*st = nodeState{}

		if !wasAlerted {
			return nil
		}

		return &WebhookAlert{
			Level:     Info,
			Title:     TitleNodeRecovered,
			Message:   fmt.Sprintf("Node '%s' is back online", node.DisplayName()),
			Timestamp: sample.At,
			NodeID:    node.ID,
			NodeName:  node.DisplayName(),
			Details: map[string]any{
				"fqdn":       node.FQDN,
				"down_since": since,
			},
		}
	}

	st.down++
	if st.down == 1 {
		st.downAt = sample.At
	}

	if st.alerted || st.down < t.threshold {
		return nil
	}

	st.alerted = true

	details := map[string]any{
		"fqdn":       node.FQDN,
		"down_since": st.downAt,
		"failures":   st.down,
	}

	if sample.Error != nil {
		details["error"] = *sample.Error
	}

	return &WebhookAlert{
		Level:     Error,
		Title:     TitleNodeOffline,
		Message:   fmt.Sprintf("Node '%s' is not responding", node.DisplayName()),
		Timestamp: sample.At,
		NodeID:    node.ID,
		NodeName:  node.DisplayName(),
		Details:   details,
	}
}

// Forget drops the state of nodes that left the inventory.
func (t *Tracker) Forget(ids ...int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range ids {
		delete(t.nodes, id)
	}
}
