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

// Package models pkg/models/node.go
package models

import "fmt"

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Node is one Wings node as listed by the panel. It is a read-only snapshot
// refreshed every probe cycle.
type Node struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	FQDN         string `json:"fqdn"`
	Scheme       string `json:"scheme"`
	BehindProxy  bool   `json:"behind_proxy"`
	DaemonListen int    `json:"daemon_listen"`
	MemoryMB     int64  `json:"memory"`
	DiskMB       int64  `json:"disk"`
	Maintenance  bool   `json:"maintenance_mode"`
}

// DisplayName returns the node name, or a placeholder built from the id.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}

	return fmt.Sprintf("Node #%d", n.ID)
}

// NodeEntry is the in-memory record kept for every tracked node. History is
// never mutated in place; writers replace the slice wholesale.
type NodeEntry struct {
	Node          Node
	Online        bool
	LatencyMs     *int64
	LastCheckedAt *string
	History       []Sample
}
