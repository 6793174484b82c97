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

package models

import "time"

// Sample is one probe measurement for one node. Samples are immutable once
// written.
type Sample struct {
	TS          int64   `json:"ts"`
	At          string  `json:"at"`
	Online      bool    `json:"online"`
	Maintenance bool    `json:"maintenance"`
	LatencyMs   *int64  `json:"latencyMs"`
	Error       *string `json:"error"`
}

// TimestampLayout is the human readable form stored alongside ts.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t the way the at column and lastUpdated are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewSample builds the sample recorded for node at cycle time. Latency is only
// kept for online probes outside maintenance and errors only for offline ones.
func NewSample(node *Node, probe *ProbeResult, cycle time.Time) Sample {
	s := Sample{
		TS:          cycle.UnixMilli(),
		At:          FormatTimestamp(cycle),
		Online:      probe.Online,
		Maintenance: node.Maintenance,
	}

	if probe.Online && !node.Maintenance && probe.LatencyMs != nil {
		s.LatencyMs = Int64Ptr(*probe.LatencyMs)
	}

	if !probe.Online && probe.Error != nil {
		s.Error = StringPtr(*probe.Error)
	}

	return s
}
