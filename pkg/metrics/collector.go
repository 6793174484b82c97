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

// Package metrics exports monitor activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/mfreeman451/pterostatus/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pterostatus"

const (
	resultOnline  = "online"
	resultOffline = "offline"
)

// Collector implements Recorder on top of Prometheus collectors.
type Collector struct {
	probes          *prometheus.CounterVec
	probeLatency    prometheus.Histogram
	cycleDuration   prometheus.Histogram
	cycleNodes      prometheus.Gauge
	cyclesSkipped   prometheus.Counter
	inventoryErrors prometheus.Counter
	writeErrors     prometheus.Counter
	nodesByStatus   *prometheus.GaugeVec
	persistence     prometheus.Gauge
}

// NewCollector creates the collectors and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Node probes by result.",
		}, []string{"result", "reason"}),
		probeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_latency_seconds",
			Help:      "Latency of successful node probes.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11),
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of completed probe cycles.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		cycleNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cycle_nodes",
			Help:      "Nodes probed by the last completed cycle.",
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_skipped_total",
			Help:      "Cycles skipped because the previous one was still running.",
		}),
		inventoryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_errors_total",
			Help:      "Failed node inventory fetches.",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "durable_write_errors_total",
			Help:      "Failed writes or prunes against the durable history store.",
		}),
		nodesByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Tracked nodes by status.",
		}, []string{"status"}),
		persistence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "persistence_enabled",
			Help:      "1 when probe history is persisted.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.probes, c.probeLatency, c.cycleDuration, c.cycleNodes, c.cyclesSkipped,
		c.inventoryErrors, c.writeErrors, c.nodesByStatus, c.persistence,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Collector) ObserveProbe(result *models.ProbeResult) {
	if result.Online {
		c.probes.WithLabelValues(resultOnline, "").Inc()

		if result.LatencyMs != nil {
			c.probeLatency.Observe(float64(*result.LatencyMs) / 1000)
		}

		return
	}

	c.probes.WithLabelValues(resultOffline, reason(result)).Inc()
}

// reason keeps label cardinality bounded: arbitrary transport messages are
// folded into "other".
func reason(result *models.ProbeResult) string {
	msg := result.ErrorString()

	switch {
	case result.StatusCode != 0:
		return "http_status"
	case msg == "ECONNREFUSED", msg == "ECONNRESET", msg == "EHOSTUNREACH",
		msg == "ENETUNREACH", msg == "ENOTFOUND", msg == "ETIMEDOUT", msg == "missing fqdn":
		return msg
	default:
		return "other"
	}
}

func (c *Collector) ObserveCycle(duration time.Duration, nodes int) {
	c.cycleDuration.Observe(duration.Seconds())
	c.cycleNodes.Set(float64(nodes))
}

func (c *Collector) CycleSkipped() {
	c.cyclesSkipped.Inc()
}

func (c *Collector) InventoryFailed() {
	c.inventoryErrors.Inc()
}

func (c *Collector) DurableWriteFailed() {
	c.writeErrors.Inc()
}

// SetNodeStatus publishes the node count per status label. Labels missing from
// counts are reset to zero.
func (c *Collector) SetNodeStatus(counts map[string]int) {
	for _, status := range []string{models.StatusOperational, models.StatusMaintenance, models.StatusOffline} {
		c.nodesByStatus.WithLabelValues(status).Set(float64(counts[status]))
	}
}

func (c *Collector) SetPersistence(enabled bool) {
	if enabled {
		c.persistence.Set(1)

		return
	}

	c.persistence.Set(0)
}
