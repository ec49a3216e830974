// Package spectate streams skirmish frames to websocket clients.
//
// A Hub keeps the set of connected spectators and fans every published
// message out to them. Publishing never blocks the simulation: when the
// hub is backed up the message is dropped, and a client whose send buffer
// is full is disconnected.
package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Message is the JSON envelope for everything sent to spectators.
type Message struct {
	Type    string `json:"type"`
	Tick    int32  `json:"tick"`
	Payload any    `json:"payload"`
}

// Message types.
const (
	TypeFrame   = "frame"
	TypeOutcome = "outcome"
)

const (
	broadcastBuffer = 16
	clientBuffer    = 64
)

// client is one connected spectator.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run returns

	connected atomic.Int32
	dropped   atomic.Int64
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "spectate"),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// closing every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int32(len(h.clients)))
			h.logger.Info("spectator connected", "remote", c.conn.RemoteAddr().String())

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("spectator too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Store(int32(len(h.clients)))
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int { return int(h.connected.Load()) }

// Dropped returns how many messages were discarded because the hub was busy.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Publish encodes a message and queues it for every client. It reports
// whether the message was queued.
func (h *Hub) Publish(msgType string, tick int32, payload any) (bool, error) {
	data, err := json.Marshal(Message{Type: msgType, Tick: tick, Payload: payload})
	if err != nil {
		return false, fmt.Errorf("encoding %s message: %w", msgType, err)
	}
	select {
	case h.broadcast <- data:
		return true, nil
	default:
		h.dropped.Add(1)
		return false, nil
	}
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages and unregisters the client when the
// connection closes.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("spectator read failed", "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages until the hub closes the channel.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
