package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// The tail endpoint carries no credentials and no mutating operations;
	// cross-origin tooling is allowed to watch it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	events   []string
	eventsMu sync.RWMutex
	logger   *slog.Logger
}

type subscribeMessage struct {
	Type   string   `json:"type"`
	Events []string `json:"events"`
}

// ServeWS upgrades the request and attaches the client to the hub. Blocks
// until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		logger: h.logger,
	}
	h.register <- client

	go client.writePump()
	client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
			continue
		}
		c.setEvents(msg.Events)
		c.logger.Debug("stream subscription updated", "remote", c.conn.RemoteAddr().String(), "events", msg.Events)
	}
}

func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) setEvents(events []string) {
	c.eventsMu.Lock()
	if len(events) == 0 {
		c.events = nil
	} else {
		c.events = append([]string(nil), events...)
	}
	c.eventsMu.Unlock()
}

// subscribedTo reports whether the client wants eventType. No subscription
// message means everything.
func (c *Client) subscribedTo(eventType string) bool {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	if len(c.events) == 0 {
		return true
	}
	for _, e := range c.events {
		if e == eventType {
			return true
		}
	}
	return false
}
