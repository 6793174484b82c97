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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler runs a check immediately and then on every interval. Each tick
// runs on its own goroutine so an overrunning check does not delay the ticker;
// the check itself decides whether to skip.
type Scheduler struct {
	interval time.Duration
	check    func(context.Context) error
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler for check.
func NewScheduler(interval time.Duration, check func(context.Context) error) *Scheduler {
	return &Scheduler{
		interval: interval,
		check:    check,
		done:     make(chan struct{}),
	}
}

// Start begins ticking in the background until ctx is cancelled or Stop is
// called. Checks run on a context detached from ctx so a shutdown lets the
// in-flight check finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)

	go s.loop(ctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.launch(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.launch(ctx)
		}
	}
}

func (s *Scheduler) launch(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		if err := s.check(context.WithoutCancel(ctx)); err != nil {
			if errors.Is(err, ErrCycleInProgress) {
				log.Debug("Previous probe cycle still running, skipping tick")

				return
			}

			log.WithError(err).Warn("Probe cycle failed")
		}
	}()
}

// Stop stops ticking and waits for in-flight checks, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })

	finished := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
