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

// Package api serves the status page, the JSON status document and the live
// update stream.
package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpx "github.com/mfreeman451/pterostatus/pkg/http"
	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	errEncodePayload = errors.New("failed to encode status payload")
	errRenderPage    = errors.New("failed to render status page")
)

//go:embed web/status.html web/client.js
var webContent embed.FS

var statusPage = template.Must(template.ParseFS(webContent, "web/status.html"))

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	UptimeSeconds      int64  `json:"uptimeSeconds"`
	PersistenceEnabled bool   `json:"persistenceEnabled"`
	Timestamp          string `json:"timestamp"`
}

// APIServer routes the status endpoints to a StatusSource.
type APIServer struct {
	source   StatusSource
	router   *mux.Router
	gatherer prometheus.Gatherer
	stream   *streamHub
}

// Option customises an APIServer.
type Option func(*APIServer)

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *APIServer) {
		s.gatherer = g
	}
}

// WithStreamInterval sets the websocket keepalive ping interval.
func WithStreamInterval(d time.Duration) Option {
	return func(s *APIServer) {
		if d > 0 {
			s.stream.pingInterval = d
		}
	}
}

// NewAPIServer builds the router for source.
func NewAPIServer(source StatusSource, opts ...Option) *APIServer {
	s := &APIServer{
		source: source,
		router: mux.NewRouter(),
	}
	s.stream = newStreamHub(source)

	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.RecoveryMiddleware)
	s.router.Use(httpx.LoggingMiddleware)
	s.router.Use(httpx.CommonMiddleware)

	s.router.HandleFunc("/api/status", s.getStatus)
	s.router.HandleFunc("/api/health", s.getHealth)
	s.router.HandleFunc("/api/stream", s.stream.serve)
	s.router.HandleFunc("/client.js", s.getClientScript)
	s.router.HandleFunc("/", s.getPage)
	s.router.HandleFunc("/status", s.getPage)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.NotFoundHandler = http.HandlerFunc(notFound)
}

// ServeHTTP implements http.Handler.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close disconnects every stream client.
func (s *APIServer) Close() {
	s.stream.close()
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)

	_, _ = w.Write([]byte("Not Found"))
}

func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	window, _ := models.ResolveRange(r.URL.Query().Get("range"))
	payload := s.source.Payload(r.Context(), window)

	httpx.WriteJSON(w, http.StatusOK, &payload)
}

func (s *APIServer) getHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.source.Stats()

	httpx.WriteJSON(w, http.StatusOK, &HealthResponse{
		Status:             stats.Status,
		Service:            stats.Service,
		UptimeSeconds:      stats.UptimeSeconds,
		PersistenceEnabled: stats.PersistenceEnabled,
		Timestamp:          stats.Timestamp,
	})
}

func (*APIServer) getClientScript(w http.ResponseWriter, _ *http.Request) {
	script, err := webContent.ReadFile("web/client.js")
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(script)
}

// getPage always renders the default range; the browser script switches
// ranges through /api/status.
func (s *APIServer) getPage(w http.ResponseWriter, r *http.Request) {
	payload := s.source.Payload(r.Context(), models.Range24h)

	data, err := newPageData(&payload)
	if err != nil {
		log.Errorf("Error building status page: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())

		return
	}

	var buf bytes.Buffer
	if err := statusPage.Execute(&buf, data); err != nil {
		log.Errorf("Error rendering status page: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, errRenderPage.Error())

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(buf.Bytes())
}
