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

package probe

import (
	"context"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Outcome pairs a node with its probe result.
type Outcome struct {
	Node   models.Node
	Result models.ProbeResult
}

// ProbeAll probes every node concurrently and waits for all of them to settle.
// Results keep the order of nodes. A limit of zero or less means unbounded.
func ProbeAll(ctx context.Context, p Prober, nodes []models.Node, limit int) []Outcome {
	out := make([]Outcome, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range nodes {
		i := i
		g.Go(func() error {
			out[i] = Outcome{Node: nodes[i], Result: p.Probe(gctx, &nodes[i])}

			return nil
		})
	}

	_ = g.Wait()

	return out
}
