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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/client"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/mfreeman451/pterostatus/pkg/ui"
	"github.com/spf13/cobra"
)

var errNodeNotFound = errors.New("node not found")

const clearScreen = "\033[H\033[2J"

type options struct {
	server  string
	rng     string
	timeout time.Duration
	json    bool
	width   int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "statusctl",
		Short:         "Query a running status server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", "http://localhost:3000", "status server base URL")
	flags.StringVarP(&opts.rng, "range", "r", models.RangeLabel24h, "history range (24h or 7d)")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	flags.BoolVar(&opts.json, "json", false, "output in JSON format")

	root.AddCommand(newStatusCmd(opts), newNodesCmd(opts), newWatchCmd(opts), newHealthCmd(opts))

	return root
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the fleet summary and node table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), payload)
			}

			renderStatus(cmd.OutOrStdout(), payload)

			return nil
		},
	}
}

func newNodesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes [id|name]",
		Short: "List nodes, or show one node with its latency sparkline",
		Example: `  statusctl nodes
  statusctl nodes 3
  statusctl nodes wings-eu-1 --range 7d`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if opts.json {
					return writeJSON(out, payload.Nodes)
				}

				fmt.Fprintln(out, ui.RenderNodeTable(payload))

				return nil
			}

			node, err := findNode(payload.Nodes, args[0])
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(out, node)
			}

			fmt.Fprint(out, ui.RenderNodeDetail(node, opts.width))

			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", 40, "sparkline width in samples")

	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Redraw the status on every probe cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(opts.server, opts.timeout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			err = c.Watch(cmd.Context(), opts.rng, func(p *models.StatusPayload) error {
				if opts.json {
					return json.NewEncoder(out).Encode(p)
				}

				fmt.Fprint(out, clearScreen)
				renderStatus(out, p)

				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the server health summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client.New(opts.server, opts.timeout)
			if err != nil {
				return err
			}

			stats, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s, up %s, persistence %t\n",
				stats.Service, stats.Status, models.FormatUptime(stats.UptimeSeconds), stats.PersistenceEnabled)

			return nil
		},
	}
}

func fetch(ctx context.Context, opts *options) (*models.StatusPayload, error) {
	c, err := client.New(opts.server, opts.timeout)
	if err != nil {
		return nil, err
	}

	return c.Status(ctx, opts.rng)
}

func renderStatus(w io.Writer, p *models.StatusPayload) {
	fmt.Fprintln(w, ui.RenderSummary(p))
	fmt.Fprintln(w, ui.RenderNodeTable(p))
}

// findNode matches by id first, then by case-insensitive name.
func findNode(nodes []models.NodeView, key string) (*models.NodeView, error) {
	if id, err := strconv.Atoi(key); err == nil {
		for i := range nodes {
			if nodes[i].ID == id {
				return &nodes[i], nil
			}
		}
	}

	for i := range nodes {
		if strings.EqualFold(nodes[i].Name, key) {
			return &nodes[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errNodeNotFound, key)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
