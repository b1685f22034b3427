// Onionr - P2P Anonymous Storage Network
// Copyright (C) 2025 Onionr contributors
//
// This file is part of Onionr.
//
// Onionr is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Onionr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Onionr. If not, see <https://www.gnu.org/licenses/>.

package plugin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/InvisaMage/onionr/internal/logger"
)

// EventType names a lifecycle or node event broadcast to plugins.
type EventType string

const (
	EventEnabled         EventType = "enabled"
	EventDisabled        EventType = "disabled"
	EventStarted         EventType = "start"
	EventStopped         EventType = "stop"
	EventBlockReceived   EventType = "block:received"
	EventNetBootstrapped EventType = "net:bootstrapped"
)

// Event is one message broadcast over the plugin event bus.
type Event struct {
	Type   EventType `json:"type"`
	Plugin string    `json:"plugin,omitempty"`
	Data   string    `json:"data,omitempty"`
}

// EventBus broadcasts Events to every attached websocket listener. It
// tracks connections under a mutex, upgrades on request, and cleans up
// on disconnect.
type EventBus struct {
	upgrader websocket.Upgrader

	connMu      sync.RWMutex
	connections map[*websocket.Conn]bool

	writeTimeout time.Duration
	log          logger.Logger
}

// NewEventBus returns an EventBus ready to accept listener connections.
func NewEventBus() *EventBus {
	return &EventBus{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections:  make(map[*websocket.Conn]bool),
		writeTimeout: 10 * time.Second,
		log:          logger.GetDefaultLogger(),
	}
}

// Handler upgrades incoming requests to websocket listeners attached to
// the bus. Listeners are write-only from the bus's perspective; any
// inbound message is discarded.
func (b *EventBus) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "plugin event bus upgrade failed", http.StatusBadRequest)
			return
		}

		b.addConnection(conn)
		defer b.removeConnection(conn)
		defer conn.Close()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}

func (b *EventBus) addConnection(conn *websocket.Conn) {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	b.connections[conn] = true
}

func (b *EventBus) removeConnection(conn *websocket.Conn) {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	delete(b.connections, conn)
}

// ConnectionCount reports the number of attached listeners.
func (b *EventBus) ConnectionCount() int {
	b.connMu.RLock()
	defer b.connMu.RUnlock()
	return len(b.connections)
}

// Publish broadcasts evt to every attached listener, dropping any
// connection that fails to write within the write timeout.
func (b *EventBus) Publish(evt Event) {
	b.connMu.RLock()
	conns := make([]*websocket.Conn, 0, len(b.connections))
	for c := range b.connections {
		conns = append(conns, c)
	}
	b.connMu.RUnlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(b.writeTimeout)); err != nil {
			continue
		}
		if err := conn.WriteJSON(evt); err != nil {
			b.log.Warn("plugin event bus write failed", logger.Error(err))
			b.removeConnection(conn)
		}
	}
}

// Close terminates every attached listener connection.
func (b *EventBus) Close() {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	for conn := range b.connections {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}
	b.connections = make(map[*websocket.Conn]bool)
}
