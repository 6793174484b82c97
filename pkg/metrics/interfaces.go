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

// Package metrics pkg/metrics/interfaces.go
package metrics

import (
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

//go:generate mockgen -destination=mock_metrics.go -package=metrics github.com/mfreeman451/pterostatus/pkg/metrics Recorder

// Recorder receives monitor events worth exporting.
type Recorder interface {
	ObserveProbe(result *models.ProbeResult)
	ObserveCycle(duration time.Duration, nodes int)
	CycleSkipped()
	InventoryFailed()
	DurableWriteFailed()
	SetNodeStatus(counts map[string]int)
	SetPersistence(enabled bool)
}
