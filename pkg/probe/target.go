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

// Package probe pkg/probe/target.go resolves Wings nodes to concrete probe
// targets and runs the HTTP health probe against them.
package probe

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/mfreeman451/pterostatus/pkg/models"
)

const (
	defaultHTTPPort  = 80
	defaultHTTPSPort = 443
)

// Target is a concrete address for one probe.
type Target struct {
	Scheme string
	Host   string
	Port   int
}

// URL returns the health endpoint for the target.
func (t Target) URL(path string) string {
	return t.Scheme + "://" + net.JoinHostPort(t.Host, strconv.Itoa(t.Port)) + path
}

func conventionalPort(scheme string) int {
	if scheme == models.SchemeHTTPS {
		return defaultHTTPSPort
	}

	return defaultHTTPPort
}

// ResolveTarget derives the probe target from the node's address settings.
// It returns false when the node has no address to probe.
func ResolveTarget(node *models.Node) (Target, bool) {
	raw := strings.TrimSpace(node.FQDN)
	if raw == "" {
		return Target{}, false
	}

	scheme := models.SchemeHTTP
	if node.Scheme == models.SchemeHTTPS {
		scheme = models.SchemeHTTPS
	}

	host, explicitPort, ok := parseAddress(raw, scheme)
	if !ok {
		host, explicitPort = splitAddress(raw)
	}

	port := explicitPort

	if port <= 0 {
		switch {
		case node.BehindProxy:
			port = conventionalPort(scheme)
		case node.DaemonListen > 0:
			port = node.DaemonListen
		default:
			port = conventionalPort(scheme)
		}
	}

	return Target{Scheme: scheme, Host: host, Port: port}, true
}

// parseAddress parses raw as a URL, using scheme when raw carries none.
func parseAddress(raw, scheme string) (host string, port int, ok bool) {
	candidate := raw
	if !strings.Contains(raw, "://") {
		candidate = scheme + "://" + raw
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return "", 0, false
	}

	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, false
		}

		port = n
	}

	return u.Hostname(), port, true
}

// splitAddress is the fallback for addresses url.Parse rejects.
func splitAddress(raw string) (host string, port int) {
	host, rest, found := strings.Cut(raw, ":")
	if host == "" {
		host = raw
	}

	if found {
		p, _, _ := strings.Cut(rest, ":")
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}

	return host, port
}
