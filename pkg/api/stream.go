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

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mfreeman451/pterostatus/pkg/models"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// streamHub pushes a fresh payload to every websocket client after each
// completed cycle.
type streamHub struct {
	source       StatusSource
	upgrader     websocket.Upgrader
	pingInterval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

func newStreamHub(source StatusSource) *streamHub {
	return &streamHub{
		source:       source,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *streamHub) serve(w http.ResponseWriter, r *http.Request) {
	window, label := models.ResolveRange(r.URL.Query().Get("range"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("Websocket upgrade failed: %v", err)
		return
	}

	if !h.add(conn) {
		_ = conn.Close()
		return
	}
	defer h.remove(conn)

	log.WithFields(log.Fields{"remote": r.RemoteAddr, "range": label}).Debug("Stream client connected")

	updates := make(chan struct{}, 1)
	unsubscribe := h.source.Subscribe(func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	go h.readLoop(conn, done)

	ctx := context.WithoutCancel(r.Context())

	if err := h.push(ctx, conn, window); err != nil {
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-updates:
			if err := h.push(ctx, conn, window); err != nil {
				log.Debugf("Stream write failed: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and a
// closed connection is noticed.
func (*streamHub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *streamHub) push(ctx context.Context, conn *websocket.Conn, window time.Duration) error {
	payload := h.source.Payload(ctx, window)

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(&payload)
}

func (h *streamHub) add(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	h.clients[conn] = struct{}{}

	return true
}

func (h *streamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()

	_ = conn.Close()
}

func (h *streamHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *streamHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
