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
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func nodeFor(t *testing.T, srv *httptest.Server, scheme string) models.Node {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return models.Node{ID: 1, Name: "n1", FQDN: u.Hostname(), Scheme: scheme, DaemonListen: port}
}

func TestHTTPProberOnlineStatuses(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent, http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, HealthPath, r.URL.Path)
				assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				w.WriteHeader(status)
			}))
			defer srv.Close()

			node := nodeFor(t, srv, models.SchemeHTTPS)

			res := NewHTTPProber(time.Second).Probe(context.Background(), &node)

			assert.True(t, res.Online)
			assert.Nil(t, res.Error)
			require.NotNil(t, res.LatencyMs)
			assert.GreaterOrEqual(t, *res.LatencyMs, int64(0))
			assert.Equal(t, status, res.StatusCode)
		})
	}
}

func TestHTTPProberServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	node := nodeFor(t, srv, models.SchemeHTTP)

	res := NewHTTPProber(time.Second).Probe(context.Background(), &node)

	assert.False(t, res.Online)
	assert.Equal(t, "http_500", res.ErrorString())
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestHTTPProberFollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == HealthPath {
			http.Redirect(w, r, "/moved", http.StatusFound)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	node := nodeFor(t, srv, models.SchemeHTTP)

	res := NewHTTPProber(time.Second).Probe(context.Background(), &node)

	assert.True(t, res.Online)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestHTTPProberConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	node := models.Node{ID: 2, FQDN: "127.0.0.1", Scheme: models.SchemeHTTP, DaemonListen: port}

	res := NewHTTPProber(time.Second).Probe(context.Background(), &node)

	assert.False(t, res.Online)
	assert.Nil(t, res.LatencyMs)
	assert.Equal(t, "ECONNREFUSED", res.ErrorString())
}

func TestHTTPProberTimeout(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	node := nodeFor(t, srv, models.SchemeHTTP)

	res := NewHTTPProber(50 * time.Millisecond).Probe(context.Background(), &node)

	assert.False(t, res.Online)
	assert.Equal(t, "ETIMEDOUT", res.ErrorString())
}

func TestHTTPProberMissingFQDN(t *testing.T) {
	node := models.Node{ID: 3, Name: "empty"}

	res := NewHTTPProber(0).Probe(context.Background(), &node)

	assert.False(t, res.Online)
	assert.Equal(t, ErrMissingFQDN, res.ErrorString())
	assert.Zero(t, res.StatusCode)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "request_failed"},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, "ECONNREFUSED"},
		{"reset", fmt.Errorf("read: %w", syscall.ECONNRESET), "ECONNRESET"},
		{"host unreachable", fmt.Errorf("dial: %w", syscall.EHOSTUNREACH), "EHOSTUNREACH"},
		{"net unreachable", fmt.Errorf("dial: %w", syscall.ENETUNREACH), "ENETUNREACH"},
		{"dns", &net.DNSError{Err: "no such host", Name: "nowhere.invalid", IsNotFound: true}, "ENOTFOUND"},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), "ETIMEDOUT"},
		{"other", errors.New("tls: handshake failure"), "tls: handshake failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyError(tt.err))
		})
	}
}

func TestProbeAllKeepsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nodes := []models.Node{{ID: 1}, {ID: 2}, {ID: 3}}

	prober := NewMockProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n *models.Node) models.ProbeResult {
			if n.ID == 2 {
				return models.ProbeResult{Online: false, Error: models.StringPtr("ECONNRESET")}
			}

			return models.ProbeResult{Online: true, LatencyMs: models.Int64Ptr(int64(n.ID * 10))}
		}).Times(3)

	out := ProbeAll(context.Background(), prober, nodes, 0)

	require.Len(t, out, 3)

	for i, o := range out {
		assert.Equal(t, nodes[i].ID, o.Node.ID)
	}

	assert.True(t, out[0].Result.Online)
	assert.False(t, out[1].Result.Online)
	assert.Equal(t, int64(30), *out[2].Result.LatencyMs)
}

func TestProbeAllRespectsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var inFlight, peak atomic.Int32

	prober := NewMockProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ *models.Node) models.ProbeResult {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)

			return models.ProbeResult{Online: true}
		}).Times(8)

	out := ProbeAll(context.Background(), prober, make([]models.Node, 8), 2)

	assert.Len(t, out, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
