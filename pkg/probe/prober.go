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
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=mock_probe.go -package=probe github.com/mfreeman451/pterostatus/pkg/probe Prober

const (
	HealthPath       = "/api/system"
	UserAgent        = "ptero-status-monitor/1.0"
	DefaultTimeout   = 5 * time.Second
	ErrMissingFQDN   = "missing fqdn"
	errRequestFailed = "request_failed"
	maxDrainBytes    = 64 << 10
)

// Prober checks one node.
type Prober interface {
	Probe(ctx context.Context, node *models.Node) models.ProbeResult
}

// HTTPProber probes the Wings system endpoint over HTTP(S).
type HTTPProber struct {
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
}

// NewHTTPProber creates a prober with the given per-probe timeout. Self-signed
// certificates are accepted since reachability is what is measured.
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // nodes commonly run self-signed certs
	transport.MaxIdleConnsPerHost = 2

	return &HTTPProber{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		timeout: timeout,
		now:     time.Now,
	}
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, node *models.Node) models.ProbeResult {
	target, ok := ResolveTarget(node)
	if !ok {
		return offline(ErrMissingFQDN)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL(HealthPath), http.NoBody)
	if err != nil {
		return offline(classifyError(err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	started := p.now()

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"node_id": node.ID,
			"target":  target.URL(HealthPath),
		}).WithError(err).Debug("Probe failed")

		return offline(classifyError(err))
	}

	latency := p.now().Sub(started).Milliseconds()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if err := resp.Body.Close(); err != nil {
		log.Debugf("failed to close probe body: %v", err)
	}

	return classifyStatus(resp.StatusCode, latency)
}

// classifyStatus treats auth failures as reachable: the monitor has no node
// token, so 401/403 still prove the daemon answered.
func classifyStatus(status int, latencyMs int64) models.ProbeResult {
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusUnauthorized, http.StatusForbidden:
		return models.ProbeResult{
			Online:     true,
			LatencyMs:  models.Int64Ptr(latencyMs),
			StatusCode: status,
		}
	default:
		return models.ProbeResult{
			Online:     false,
			LatencyMs:  models.Int64Ptr(latencyMs),
			Error:      models.StringPtr(fmt.Sprintf("http_%d", status)),
			StatusCode: status,
		}
	}
}

func offline(code string) models.ProbeResult {
	return models.ProbeResult{Online: false, Error: models.StringPtr(code)}
}

// classifyError maps transport failures onto short socket style codes.
func classifyError(err error) string {
	var dnsErr *net.DNSError

	switch {
	case err == nil:
		return errRequestFailed
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return "EHOSTUNREACH"
	case errors.Is(err, syscall.ENETUNREACH):
		return "ENETUNREACH"
	case errors.As(err, &dnsErr):
		return "ENOTFOUND"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return "ETIMEDOUT"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "ETIMEDOUT"
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return errRequestFailed
}
