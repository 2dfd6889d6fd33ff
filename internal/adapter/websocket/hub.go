// Package websocket pushes render frames to browser map clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	gws "github.com/gorilla/websocket"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
)

const sendBuffer = 8

// message is the envelope written to clients.
type message struct {
	Type    string       `json:"type"`
	Payload domain.Frame `json:"payload"`
}

// Hub tracks connected clients and broadcasts every frame it renders.
// New clients receive the most recent frame on connect.
type Hub struct {
	logger   *slog.Logger
	upgrader gws.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

// NewHub creates a hub. checkOrigin may be nil to accept same-origin requests only.
func NewHub(logger *slog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		logger: logger,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*client]struct{}),
	}
}

// Name labels the hub in render metrics.
func (h *Hub) Name() string { return "websocket" }

// Render implements pipeline.Renderer. Clients whose send buffer is full are
// dropped instead of blocking the recompute.
func (h *Hub) Render(_ context.Context, frame domain.Frame) error {
	data, err := json.Marshal(message{Type: "frame", Payload: frame})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client too slow, dropping", "remote", c.remote)
			h.dropLocked(c)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), remote: conn.RemoteAddr().String()}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", "remote", c.remote, "clients", n)

	go c.writePump()
	go c.readPump()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.dropLocked(c)
		h.logger.Info("websocket client disconnected", "remote", c.remote, "clients", len(h.clients))
	}
}

// dropLocked removes c and closes its send channel, which ends its write pump.
func (h *Hub) dropLocked(c *client) {
	delete(h.clients, c)
	close(c.send)
}
