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
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/mfreeman451/pterostatus/pkg/api"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testPayload() models.StatusPayload {
	return models.StatusPayload{
		ServiceStats: models.ServiceStats{Status: models.ServiceStatusOK, Service: "web-monitor", UptimeSeconds: 65},
		Monitor:      models.MonitorInfo{SampleIntervalMs: 4000, RangeLabel: models.RangeLabel24h},
		Nodes: []models.NodeView{
			{ID: 3, Name: "Wings-EU", StatusLabel: models.StatusOperational, UptimePercent: "100.00", LatencyMs: models.Int64Ptr(12)},
			{ID: 4, Name: "wings-us", StatusLabel: models.StatusOffline, UptimePercent: "0.00"},
		},
	}
}

func run(t *testing.T, source api.StatusSource, args ...string) (string, error) {
	t.Helper()

	srv := api.NewAPIServer(source)
	ts := httptest.NewServer(srv)

	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--server", ts.URL))

	err := cmd.Execute()

	return out.String(), err
}

func TestStatusCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := api.NewMockStatusSource(ctrl)
	source.EXPECT().Payload(gomock.Any(), models.Range24h).Return(testPayload())

	out, err := run(t, source, "status")
	require.NoError(t, err)

	assert.Contains(t, out, "Partial Outage")
	assert.Contains(t, out, "Wings-EU")
	assert.Contains(t, out, "12ms")
}

func TestStatusCommandJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := api.NewMockStatusSource(ctrl)
	source.EXPECT().Payload(gomock.Any(), models.Range7d).Return(testPayload())

	out, err := run(t, source, "status", "--json", "--range", "7d")
	require.NoError(t, err)

	var got models.StatusPayload
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Nodes, 2)
}

func TestNodesCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := api.NewMockStatusSource(ctrl)
	source.EXPECT().Payload(gomock.Any(), gomock.Any()).Return(testPayload()).Times(4)

	out, err := run(t, source, "nodes")
	require.NoError(t, err)
	assert.Contains(t, out, "Wings-EU")
	assert.Contains(t, out, "wings-us")
	assert.NotContains(t, out, "Partial Outage")

	out, err = run(t, source, "nodes", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "wings-us")
	assert.NotContains(t, out, "Wings-EU")

	out, err = run(t, source, "nodes", "wings-eu")
	require.NoError(t, err)
	assert.Contains(t, out, "Wings-EU")

	_, err = run(t, source, "nodes", "missing")
	assert.ErrorIs(t, err, errNodeNotFound)
}

func TestHealthCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := api.NewMockStatusSource(ctrl)
	source.EXPECT().Stats().Return(testPayload().ServiceStats)

	out, err := run(t, source, "health")
	require.NoError(t, err)

	assert.Equal(t, "web-monitor ok, up 1m 5s, persistence false\n", out)
}

func TestFindNode(t *testing.T) {
	nodes := testPayload().Nodes

	n, err := findNode(nodes, "3")
	require.NoError(t, err)
	assert.Equal(t, "Wings-EU", n.Name)

	n, err = findNode(nodes, "WINGS-US")
	require.NoError(t, err)
	assert.Equal(t, 4, n.ID)
}
