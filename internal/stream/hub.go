// Package stream fans assembled records out to websocket subscribers. It is
// a debugging tap on the pipeline: operators connect to /ws to watch records
// as they are written, optionally filtered by event type.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/metrics"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/record"
)

// Hub tracks subscribers and broadcasts records to them. Broadcasting never
// blocks the pipeline: a full hub queue drops the message, a full client
// queue drops the client.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	logger     *slog.Logger
}

type broadcastMessage struct {
	eventType string
	data      []byte
}

// NewHub creates a hub. Run must be started before use.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.StreamClients.Set(float64(len(h.clients)))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.StreamClients.Set(float64(len(h.clients)))
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.subscribedTo(msg.eventType) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer: drop it rather than stall everyone.
					delete(h.clients, client)
					close(client.send)
					metrics.StreamClients.Set(float64(len(h.clients)))
				}
			}
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			metrics.StreamClients.Set(0)
			return
		}
	}
}

// Publish broadcasts a record to subscribers of its event type. Dropped when
// the hub is saturated; the tap must never slow ingestion down.
func (h *Hub) Publish(eventType string, rec *record.OutputRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- broadcastMessage{eventType: eventType, data: data}:
	default:
		h.logger.Debug("stream broadcast dropped", "event", eventType)
	}
}
