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

// Package registry registers the status server with Consul.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	consul "github.com/hashicorp/consul/api"
	"github.com/mfreeman451/pterostatus/pkg/config"
	log "github.com/sirupsen/logrus"
)

var (
	errInvalidAddr   = errors.New("invalid advertise address")
	errRegisterAgent = errors.New("consul service registration failed")
)

const (
	checkInterval          = "10s"
	checkTimeout           = "5s"
	deregisterCriticalTime = "1m"
	defaultMaxElapsed      = 2 * time.Minute
	healthPath             = "/api/health"
)

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/mfreeman451/pterostatus/pkg/registry Agent

// Agent is the subset of the Consul agent API used for registration.
type Agent interface {
	ServiceRegister(service *consul.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

// Registrar registers one service instance and removes it again on shutdown.
type Registrar struct {
	agent        Agent
	registration *consul.AgentServiceRegistration
	newBackOff   func() backoff.BackOff
}

// New builds a Registrar against the Consul agent at cfg.Addr. listenAddr is
// the status server's bind address, used when no advertise address is set.
func New(cfg *config.ConsulConfig, listenAddr, grpcAddr string) (*Registrar, error) {
	clientCfg := consul.DefaultConfig()
	clientCfg.Address = cfg.Addr

	client, err := consul.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	reg, err := Registration(cfg, listenAddr, grpcAddr)
	if err != nil {
		return nil, err
	}

	return NewWithAgent(client.Agent(), reg), nil
}

// NewWithAgent wraps an existing agent client.
func NewWithAgent(agent Agent, reg *consul.AgentServiceRegistration) *Registrar {
	return &Registrar{
		agent:        agent,
		registration: reg,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxInterval = 10 * time.Second
			b.MaxElapsedTime = defaultMaxElapsed

			return b
		},
	}
}

// Registration describes the status server to Consul with an HTTP check on
// the health endpoint and, when grpcAddr is set, a gRPC health check.
func Registration(cfg *config.ConsulConfig, listenAddr, grpcAddr string) (*consul.AgentServiceRegistration, error) {
	advertise := cfg.AdvertiseAddr
	if advertise == "" {
		advertise = listenAddr
	}

	host, port, err := splitHostPort(advertise)
	if err != nil {
		return nil, err
	}

	checks := consul.AgentServiceChecks{
		{
			Name:                           "status page",
			HTTP:                           fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), healthPath),
			Interval:                       checkInterval,
			Timeout:                        checkTimeout,
			DeregisterCriticalServiceAfter: deregisterCriticalTime,
		},
	}

	if grpcAddr != "" {
		_, grpcPort, err := splitHostPort(grpcAddr)
		if err != nil {
			return nil, err
		}

		checks = append(checks, &consul.AgentServiceCheck{
			Name:     "grpc health",
			GRPC:     net.JoinHostPort(host, strconv.Itoa(grpcPort)),
			Interval: checkInterval,
			Timeout:  checkTimeout,
		})
	}

	return &consul.AgentServiceRegistration{
		ID:      cfg.ServiceID,
		Name:    cfg.ServiceName,
		Address: host,
		Port:    port,
		Tags:    cfg.Tags,
		Checks:  checks,
	}, nil
}

// Register retries until the agent accepts the registration, ctx ends or the
// backoff gives up.
func (r *Registrar) Register(ctx context.Context) error {
	b := backoff.WithContext(r.newBackOff(), ctx)

	err := backoff.RetryNotify(func() error {
		return r.agent.ServiceRegister(r.registration)
	}, b, func(err error, next time.Duration) {
		log.WithFields(log.Fields{
			"service_id": r.registration.ID,
			"retry_in":   next.String(),
		}).Warnf("Consul registration failed: %v", err)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errRegisterAgent, err)
	}

	log.WithFields(log.Fields{
		"service_id": r.registration.ID,
		"address":    net.JoinHostPort(r.registration.Address, strconv.Itoa(r.registration.Port)),
	}).Info("Registered with Consul")

	return nil
}

// Deregister removes the service. It matches lifecycle.ShutdownHook.
func (r *Registrar) Deregister(_ context.Context) error {
	if err := r.agent.ServiceDeregister(r.registration.ID); err != nil {
		return fmt.Errorf("consul deregister %s: %w", r.registration.ID, err)
	}

	log.WithField("service_id", r.registration.ID).Info("Deregistered from Consul")

	return nil
}

func splitHostPort(addr string) (host string, port int, err error) {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("%w %q: %w", errInvalidAddr, addr, err)
	}

	port, err = strconv.Atoi(p)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("%w %q: bad port", errInvalidAddr, addr)
	}

	if h == "" || h == "0.0.0.0" || h == "::" {
		h = localIP()
	}

	return h, port, nil
}

// localIP returns the first non-loopback IPv4 address, or 127.0.0.1.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}

	return "127.0.0.1"
}
