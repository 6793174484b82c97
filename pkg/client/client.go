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

// Package client talks to a running status server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mfreeman451/pterostatus/pkg/models"
)

var (
	errInvalidServer = errors.New("invalid server url")
	errStatus        = errors.New("unexpected response status")
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Client fetches status documents from a status server.
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
}

// New validates server and returns a client for it.
func New(server string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(server, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidServer, server)
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
		},
	}, nil
}

func (c *Client) endpoint(path, rng string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path

	if rng != "" {
		u.RawQuery = url.Values{"range": []string{rng}}.Encode()
	}

	return u.String()
}

func (c *Client) getJSON(ctx context.Context, target string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("%w: %d %s", errStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// Status fetches GET /api/status for rng ("24h" or "7d").
func (c *Client) Status(ctx context.Context, rng string) (*models.StatusPayload, error) {
	var payload models.StatusPayload

	if err := c.getJSON(ctx, c.endpoint("/api/status", rng), &payload); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}

	return &payload, nil
}

// Health fetches GET /api/health.
func (c *Client) Health(ctx context.Context) (*models.ServiceStats, error) {
	var stats models.ServiceStats

	if err := c.getJSON(ctx, c.endpoint("/api/health", ""), &stats); err != nil {
		return nil, fmt.Errorf("fetch health: %w", err)
	}

	return &stats, nil
}

// Watch streams payloads from /api/stream until ctx ends, the server closes
// the connection or fn returns an error.
func (c *Client) Watch(ctx context.Context, rng string, fn func(*models.StatusPayload) error) error {
	target := c.endpoint("/api/stream", rng)
	target = "ws" + strings.TrimPrefix(target, "http")

	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var payload models.StatusPayload

		if err := conn.ReadJSON(&payload); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			return fmt.Errorf("read stream: %w", err)
		}

		if err := fn(&payload); err != nil {
			return err
		}
	}
}
