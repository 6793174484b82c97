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

// Package models pkg/models/metrics.go
package models

// ProbeResult is the outcome of one health probe against one node.
type ProbeResult struct {
	Online     bool    `json:"online"`
	LatencyMs  *int64  `json:"latency_ms"`
	Error      *string `json:"error"`
	StatusCode int     `json:"status_code"`
}

// ErrorString returns the probe error or an empty string.
func (p *ProbeResult) ErrorString() string {
	if p.Error == nil {
		return ""
	}

	return *p.Error
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
