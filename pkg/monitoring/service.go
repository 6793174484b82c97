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

package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Service runs the probe scheduler for a Monitor and tears both down on Stop.
type Service struct {
	monitor   *Monitor
	scheduler *Scheduler
	stopOnce  sync.Once
	stopErr   error
}

// NewService schedules m.RunCycle at the configured sample interval.
func NewService(m *Monitor) *Service {
	return &Service{
		monitor:   m,
		scheduler: NewScheduler(m.Config().SampleInterval, m.RunCycle),
	}
}

// Start begins probing. It returns immediately.
func (s *Service) Start(ctx context.Context) error {
	log.WithField("interval", s.monitor.Config().SampleInterval.String()).Info("Starting node probe scheduler")

	s.scheduler.Start(ctx)

	return nil
}

// Stop waits for the in-flight cycle (bounded by ctx), drains pending alerts
// and closes the history store.
func (s *Service) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() {
		var errs []error

		if err := s.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}

		if err := s.monitor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("history store: %w", err))
		}

		s.stopErr = errors.Join(errs...)
	})

	return s.stopErr
}
