// Package stream broadcasts world snapshots to websocket clients such as browser renderers.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"boxworld/internal/logger"
	"boxworld/internal/physics"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one connected viewer. Writes to a websocket are not concurrency safe, so each client has its own lock.
type client struct {
	mtx    sync.Mutex
	socket *websocket.Conn
}

func (c *client) send(msg []byte) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.write(msg)
}

// write requires c.mtx.
func (c *client) write(msg []byte) error {
	_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	return c.socket.WriteMessage(websocket.TextMessage, msg)
}

// Hub fans snapshots out to every connected client. It implements http.Handler for the upgrade endpoint.
type Hub struct {
	log *logger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

// NewHub returns a hub that logs connects and disconnects to log (which may be nil).
func NewHub(log *logger.Logger) *Hub {
	return &Hub{log: log, clients: make(map[*client]struct{})}
}

func (h *Hub) logf(format string, args ...any) {
	if h.log != nil {
		h.log.Logf(format, args...)
	}
}

// ServeHTTP upgrades the connection, sends the latest snapshot, and keeps the client registered until it disconnects.
// Messages sent by clients are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logf("stream: upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	c := &client{socket: ws}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = ws.Close()
		return
	}
	h.logf("stream: client %s connected", r.RemoteAddr)
	h.clients[c] = struct{}{}
	// The catch-up write holds the client lock before the hub lock is released, so any
	// Broadcast that already sees this client queues behind it with a newer snapshot.
	c.mtx.Lock()
	last := h.last
	h.mu.Unlock()

	err = nil
	if last != nil {
		err = c.write(last)
	}
	c.mtx.Unlock()
	if err != nil {
		h.drop(c)
		return
	}
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
	h.logf("stream: client %s disconnected", r.RemoteAddr)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.socket.Close()
}

// Broadcast sends s as JSON to every client. Clients whose write fails are disconnected.
func (h *Hub) Broadcast(s physics.Snapshot) error {
	msg, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("stream: encode snapshot: %w", err)
	}

	h.mu.Lock()
	h.last = msg
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.send(msg); err != nil {
			h.logf("stream: dropping client: %v", err)
			h.drop(c)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range targets {
		c.mtx.Lock()
		_ = c.socket.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), time.Now().Add(writeWait))
		c.mtx.Unlock()
		_ = c.socket.Close()
	}
}
