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

// Package panel pkg/panel/interfaces.go
package panel

import (
	"context"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

//go:generate mockgen -destination=mock_panel.go -package=panel github.com/mfreeman451/pterostatus/pkg/panel NodeLister

// NodeLister returns the full node inventory known to the panel.
type NodeLister interface {
	ListNodes(ctx context.Context) ([]models.Node, error)
}
