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

package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var (
	errMissingPanelURL    = errors.New("panel.url is required")
	errMissingPanelKey    = errors.New("panel.api_key is required")
	errInvalidPanelURL    = errors.New("panel.url is invalid")
	errInvalidInterval    = errors.New("monitor.sample_interval must be positive")
	errInvalidTimeout     = errors.New("monitor.probe_timeout must be positive")
	errInvalidWindow      = errors.New("monitor.memory_window must be positive")
	errInvalidRetention   = errors.New("monitor.retention must not be shorter than monitor.memory_window")
	errInvalidPageSize    = errors.New("panel.page_size must be positive")
	errInvalidListenAddr  = errors.New("listen_addr is required")
	errInvalidWebhookURL  = errors.New("webhook url is required when enabled")
	errInvalidConcurrency = errors.New("monitor.probe_concurrency must not be negative")
)

// PanelConfig points the monitor at the Pterodactyl application API.
type PanelConfig struct {
	URL               string        `mapstructure:"url" json:"url"`
	APIKey            string        `mapstructure:"api_key" json:"api_key"`
	PageSize          int           `mapstructure:"page_size" json:"page_size"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" json:"requests_per_second"`
	Burst             int           `mapstructure:"burst" json:"burst"`
	Timeout           time.Duration `mapstructure:"timeout" json:"timeout"`
}

// MonitorConfig controls probe pacing and history retention.
type MonitorConfig struct {
	SampleInterval   time.Duration `mapstructure:"sample_interval" json:"sample_interval"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" json:"probe_timeout"`
	MemoryWindow     time.Duration `mapstructure:"memory_window" json:"memory_window"`
	Retention        time.Duration `mapstructure:"retention" json:"retention"`
	PruneInterval    time.Duration `mapstructure:"prune_interval" json:"prune_interval"`
	ProbeConcurrency int           `mapstructure:"probe_concurrency" json:"probe_concurrency"`
}

// WebhookConfig represents a webhook notification configuration. Template may
// be a Go text/template producing JSON or the keyword "discord".
type WebhookConfig struct {
	Enabled  bool          `mapstructure:"enabled" json:"enabled"`
	URL      string        `mapstructure:"url" json:"url"`
	Cooldown time.Duration `mapstructure:"cooldown" json:"cooldown"`
	Template string        `mapstructure:"template" json:"template"`
	Headers  []Header      `mapstructure:"headers" json:"headers,omitempty"`
}

// Header represents a custom HTTP header.
type Header struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

// AlertsConfig controls outage notifications.
type AlertsConfig struct {
	DownThreshold int             `mapstructure:"down_threshold" json:"down_threshold"`
	Webhooks      []WebhookConfig `mapstructure:"webhooks" json:"webhooks,omitempty"`
}

// ConsulConfig enables service registration when Addr is set.
type ConsulConfig struct {
	Addr          string   `mapstructure:"addr" json:"addr"`
	ServiceID     string   `mapstructure:"service_id" json:"service_id"`
	ServiceName   string   `mapstructure:"service_name" json:"service_name"`
	AdvertiseAddr string   `mapstructure:"advertise_addr" json:"advertise_addr"`
	Tags          []string `mapstructure:"tags" json:"tags"`
}

// LoggingConfig selects the logrus level and formatter.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// StatusConfig represents the configuration for the status service.
type StatusConfig struct {
	ListenAddr string        `mapstructure:"listen_addr" json:"listen_addr"`
	GrpcAddr   string        `mapstructure:"grpc_addr" json:"grpc_addr,omitempty"`
	DBPath     string        `mapstructure:"db_path" json:"db_path"`
	Panel      PanelConfig   `mapstructure:"panel" json:"panel"`
	Monitor    MonitorConfig `mapstructure:"monitor" json:"monitor"`
	Alerts     AlertsConfig  `mapstructure:"alerts" json:"alerts"`
	Consul     ConsulConfig  `mapstructure:"consul" json:"consul"`
	Logging    LoggingConfig `mapstructure:"logging" json:"logging"`
}

// Defaults implements Defaulter.
func (*StatusConfig) Defaults() map[string]interface{} {
	return map[string]interface{}{
		"listen_addr":               ":3000",
		"grpc_addr":                 "",
		"db_path":                   "data/status-history.sqlite",
		"panel.url":                 "",
		"panel.api_key":             "",
		"panel.page_size":           100,
		"panel.requests_per_second": 4.0,
		"panel.burst":               4,
		"panel.timeout":             "15s",
		"monitor.sample_interval":   "4s",
		"monitor.probe_timeout":     "5s",
		"monitor.memory_window":     "24h",
		"monitor.retention":         "168h",
		"monitor.prune_interval":    "5m",
		"monitor.probe_concurrency": 0,
		"alerts.down_threshold":     3,
		"consul.addr":               "",
		"consul.service_id":         "pterostatus",
		"consul.service_name":       "pterostatus",
		"consul.advertise_addr":     "",
		"logging.level":             "info",
		"logging.format":            "text",
	}
}

// Validate implements Validator.
func (c *StatusConfig) Validate() error {
	if c.ListenAddr == "" {
		return errInvalidListenAddr
	}

	if c.Panel.URL == "" {
		return errMissingPanelURL
	}

	if u, err := url.Parse(c.Panel.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidPanelURL, c.Panel.URL)
	}

	if c.Panel.APIKey == "" {
		return errMissingPanelKey
	}

	if c.Panel.PageSize <= 0 {
		return errInvalidPageSize
	}

	return c.Monitor.validate(c.Alerts)
}

func (m *MonitorConfig) validate(alerts AlertsConfig) error {
	switch {
	case m.SampleInterval <= 0:
		return errInvalidInterval
	case m.ProbeTimeout <= 0:
		return errInvalidTimeout
	case m.MemoryWindow <= 0:
		return errInvalidWindow
	case m.Retention < m.MemoryWindow:
		return errInvalidRetention
	case m.ProbeConcurrency < 0:
		return errInvalidConcurrency
	}

	for i := range alerts.Webhooks {
		if alerts.Webhooks[i].Enabled && alerts.Webhooks[i].URL == "" {
			return fmt.Errorf("%w: webhook %d", errInvalidWebhookURL, i)
		}
	}

	return nil
}
