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

package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultPageSize = 100
	defaultTimeout  = 15 * time.Second
	nodesPath       = "/api/application/nodes"
	maxErrorBody    = 64 << 10
)

var (
	errDecodePage = errors.New("failed to decode node page")
	errRateLimit  = errors.New("panel rate limiter")
)

// APIError is returned when the panel answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}

	return fmt.Sprintf("panel returned status %d", e.StatusCode)
}

// Config holds the settings for a panel Client.
type Config struct {
	BaseURL           string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client lists nodes through the Pterodactyl application API.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a panel client. A zero RequestsPerSecond disables rate
// limiting.
func NewClient(cfg Config) *Client {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}

		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

type nodePage struct {
	Data []nodeItem `json:"data"`
}

type nodeItem struct {
	Object     string          `json:"object"`
	Attributes json.RawMessage `json:"attributes"`
}

type nodeAttributes struct {
	ID              *int    `json:"id"`
	Name            string  `json:"name"`
	FQDN            string  `json:"fqdn"`
	Scheme          string  `json:"scheme"`
	BehindProxy     bool    `json:"behind_proxy"`
	DaemonListen    flexInt `json:"daemon_listen"`
	Memory          flexInt `json:"memory"`
	Disk            flexInt `json:"disk"`
	MaintenanceMode bool    `json:"maintenance_mode"`
}

type errorBody struct {
	Errors []struct {
		Code   string `json:"code"`
		Status string `json:"status"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// ListNodes implements NodeLister. It walks every page until a short page is
// returned.
func (c *Client) ListNodes(ctx context.Context) ([]models.Node, error) {
	var nodes []models.Node

	for page := 1; ; page++ {
		items, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		for i := range items {
			node, err := parseNode(items[i].Attributes)
			if err != nil {
				log.WithError(err).WithField("page", page).Warn("Skipping malformed node entry")
				continue
			}

			nodes = append(nodes, node)
		}

		if len(items) < c.pageSize {
			break
		}
	}

	return nodes, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]nodeItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", errRateLimit, err)
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+nodesPath+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readAPIError(resp)
	}

	var body nodePage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w %d: %w", errDecodePage, page, err)
	}

	return body.Data, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil && len(body.Errors) > 0 {
		apiErr.Detail = body.Errors[0].Detail
	}

	return apiErr
}
