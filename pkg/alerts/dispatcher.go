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

package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfreeman451/pterostatus/pkg/config"
)

// Dispatcher fans an alert out to every enabled alerter.
type Dispatcher struct {
	alerters []AlertService
}

// NewDispatcher wraps the given alerters.
func NewDispatcher(alerters ...AlertService) *Dispatcher {
	return &Dispatcher{alerters: alerters}
}

// NewDispatcherFromConfig builds one webhook alerter per configured webhook.
func NewDispatcherFromConfig(cfgs []config.WebhookConfig) (*Dispatcher, error) {
	alerters := make([]AlertService, 0, len(cfgs))

	for i := range cfgs {
		w, err := NewWebhookAlerter(cfgs[i])
		if err != nil {
			return nil, fmt.Errorf("webhook %d: %w", i, err)
		}

		alerters = append(alerters, w)
	}

	return NewDispatcher(alerters...), nil
}

// IsEnabled reports whether at least one alerter is enabled.
func (d *Dispatcher) IsEnabled() bool {
	for _, a := range d.alerters {
		if a.IsEnabled() {
			return true
		}
	}

	return false
}

// Alert sends a copy of alert to every enabled alerter. Cooldown skips are not
// treated as failures.
func (d *Dispatcher) Alert(ctx context.Context, alert *WebhookAlert) error {
	var errs []error

	for _, a := range d.alerters {
		if !a.IsEnabled() {
			continue
		}

		cp := *alert
		if err := a.Alert(ctx, &cp); err != nil && !errors.Is(err, ErrWebhookCooldown) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
