// Package ws fans read-model change notifications out to WebSocket clients
// subscribed per club.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Conn is the write side of a client connection. The concrete WebSocket
// type is wrapped behind it so the hub can be tested without a network.
type Conn interface {
	// Write sends one text message to the client.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error
}

// Message is the payload pushed to subscribers.
type Message struct {
	Type string `json:"type"`
}

// Hub tracks which connections subscribe to which club and delivers
// messages to them. A connection that fails a write is dropped.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]map[Conn]struct{}
	connClub map[Conn]string

	logger       *slog.Logger
	writeTimeout time.Duration
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithWriteTimeout bounds each client write. Default 5s.
func WithWriteTimeout(timeout time.Duration) HubOption {
	return func(h *Hub) { h.writeTimeout = timeout }
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		conns:        make(map[string]map[Conn]struct{}),
		connClub:     make(map[Conn]string),
		logger:       logger,
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register subscribes a connection to a club's notifications.
func (h *Hub) Register(conn Conn, clubID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[clubID] == nil {
		h.conns[clubID] = make(map[Conn]struct{})
	}
	h.conns[clubID][conn] = struct{}{}
	h.connClub[conn] = clubID
	h.logger.Info("websocket registered", "club_id", clubID, "connections", len(h.conns[clubID]))
}

// Unregister removes a connection. Unknown connections are ignored.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn Conn) {
	clubID, ok := h.connClub[conn]
	if !ok {
		return
	}
	delete(h.conns[clubID], conn)
	if len(h.conns[clubID]) == 0 {
		delete(h.conns, clubID)
	}
	delete(h.connClub, conn)
	h.logger.Info("websocket unregistered", "club_id", clubID)
}

// ConnectionCount returns the number of connections subscribed to a club.
func (h *Hub) ConnectionCount(clubID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[clubID])
}

// Notify delivers a typed message to a club's subscribers. It implements
// the projection worker's post-commit notification sink.
func (h *Hub) Notify(ctx context.Context, clubID, messageType string) {
	h.Send(ctx, clubID, Message{Type: messageType})
}

// Send serializes the payload once and writes it to every connection of
// the club. Connections whose write fails are unregistered afterwards.
func (h *Hub) Send(ctx context.Context, clubID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to serialize websocket message", "club_id", clubID, "error", err)
		return
	}

	// Snapshot under lock, write outside it.
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.conns[clubID]))
	for conn := range h.conns[clubID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []Conn
	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
		err := conn.Write(writeCtx, data)
		cancel()
		if err != nil {
			h.logger.Info("websocket write failed, dropping connection", "club_id", clubID, "error", err)
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			h.removeLocked(conn)
		}
		h.mu.Unlock()
		for _, conn := range failed {
			conn.Close()
		}
	}
}

// Broadcast sends the payload to every club except those excluded.
func (h *Hub) Broadcast(ctx context.Context, payload any, exclude ...string) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	h.mu.RLock()
	clubIDs := make([]string, 0, len(h.conns))
	for clubID := range h.conns {
		clubIDs = append(clubIDs, clubID)
	}
	h.mu.RUnlock()

	for _, clubID := range clubIDs {
		if _, skip := excluded[clubID]; skip {
			continue
		}
		h.Send(ctx, clubID, payload)
	}
}
