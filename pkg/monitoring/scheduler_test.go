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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32

	s := NewScheduler(20*time.Millisecond, func(context.Context) error {
		runs.Add(1)

		return nil
	})

	s.Start(context.Background())

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))

	stopped := runs.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	require.NoError(t, s.Stop(ctx), "stop is idempotent")
}

func TestSchedulerStopWaitsForInflightCheck(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var finished atomic.Bool

	s := NewScheduler(time.Hour, func(ctx context.Context) error {
		close(started)
		<-release

		assert.NoError(t, ctx.Err(), "checks run detached from the scheduler context")
		finished.Store(true)

		return ErrCycleInProgress
	})

	runCtx, cancelRun := context.WithCancel(context.Background())
	s.Start(runCtx)

	<-started
	cancelRun()

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Stop(short), context.DeadlineExceeded)

	close(release)

	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()

	require.NoError(t, s.Stop(ctx))
	assert.True(t, finished.Load())
}
