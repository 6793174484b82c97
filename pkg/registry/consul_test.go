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

package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	consul "github.com/hashicorp/consul/api"
	"github.com/mfreeman451/pterostatus/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errAgentDown = errors.New("connection refused")

func testConfig() *config.ConsulConfig {
	return &config.ConsulConfig{
		Addr:          "127.0.0.1:8500",
		ServiceID:     "pterostatus-1",
		ServiceName:   "pterostatus",
		AdvertiseAddr: "10.0.0.5:3000",
		Tags:          []string{"status"},
	}
}

func fastRetry(r *Registrar, attempts uint64) {
	r.newBackOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), attempts)
	}
}

func TestRegistration(t *testing.T) {
	reg, err := Registration(testConfig(), ":3000", ":50051")
	require.NoError(t, err)

	assert.Equal(t, "pterostatus-1", reg.ID)
	assert.Equal(t, "pterostatus", reg.Name)
	assert.Equal(t, "10.0.0.5", reg.Address)
	assert.Equal(t, 3000, reg.Port)
	require.Len(t, reg.Checks, 2)
	assert.Equal(t, "http://10.0.0.5:3000/api/health", reg.Checks[0].HTTP)
	assert.Equal(t, "10.0.0.5:50051", reg.Checks[1].GRPC)
}

func TestRegistrationFallsBackToListenAddr(t *testing.T) {
	cfg := testConfig()
	cfg.AdvertiseAddr = ""

	reg, err := Registration(cfg, ":3000", "")
	require.NoError(t, err)

	assert.NotEmpty(t, reg.Address)
	assert.Equal(t, 3000, reg.Port)
	assert.Len(t, reg.Checks, 1)
}

func TestRegistrationInvalidAddr(t *testing.T) {
	cfg := testConfig()

	for _, addr := range []string{"no-port", "host:0", "host:http"} {
		cfg.AdvertiseAddr = addr

		_, err := Registration(cfg, ":3000", "")
		assert.ErrorIs(t, err, errInvalidAddr, addr)
	}
}

func TestRegisterRetriesUntilAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := NewMockAgent(ctrl)

	reg, err := Registration(testConfig(), "", "")
	require.NoError(t, err)

	gomock.InOrder(
		agent.EXPECT().ServiceRegister(reg).Return(errAgentDown),
		agent.EXPECT().ServiceRegister(reg).Return(errAgentDown),
		agent.EXPECT().ServiceRegister(reg).Return(nil),
	)

	r := NewWithAgent(agent, reg)
	fastRetry(r, 5)

	require.NoError(t, r.Register(context.Background()))
}

func TestRegisterGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := NewMockAgent(ctrl)

	reg, err := Registration(testConfig(), "", "")
	require.NoError(t, err)

	agent.EXPECT().ServiceRegister(gomock.Any()).Return(errAgentDown).Times(3)

	r := NewWithAgent(agent, reg)
	fastRetry(r, 2)

	err = r.Register(context.Background())
	require.ErrorIs(t, err, errRegisterAgent)
	assert.ErrorIs(t, err, errAgentDown)
}

func TestRegisterStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := NewMockAgent(ctrl)

	reg, err := Registration(testConfig(), "", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	agent.EXPECT().ServiceRegister(gomock.Any()).DoAndReturn(func(*consul.AgentServiceRegistration) error {
		cancel()
		return errAgentDown
	})

	r := NewWithAgent(agent, reg)

	require.Error(t, r.Register(ctx))
}

func TestDeregister(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := NewMockAgent(ctrl)

	reg, err := Registration(testConfig(), "", "")
	require.NoError(t, err)

	agent.EXPECT().ServiceDeregister("pterostatus-1").Return(nil)
	agent.EXPECT().ServiceDeregister("pterostatus-1").Return(errAgentDown)

	r := NewWithAgent(agent, reg)

	require.NoError(t, r.Deregister(context.Background()))
	assert.ErrorIs(t, r.Deregister(context.Background()), errAgentDown)
}
