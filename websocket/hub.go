package websocket

import (
	"sync"

	"resqlink/models"

	"github.com/sirupsen/logrus"
)

// Hub fans live emergency events out to connected responder clients. The
// feed is one way: clients only receive.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Events to broadcast to every client
	broadcast chan models.WSEvent

	done chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.WSEvent, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	logrus.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logrus.Debugf("WebSocket client connected: %s (%d active)",
				client.userID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logrus.Debugf("WebSocket client disconnected: %s (%d active)",
					client.userID, len(h.clients))
			}

		case event := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow consumer, drop the connection rather than block
					// the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			logrus.Info("WebSocket hub stopped")
			return
		}
	}
}

// BroadcastEvent queues the event for every connected client without
// blocking the caller.
func (h *Hub) BroadcastEvent(event models.WSEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	default:
		logrus.Warn("WebSocket broadcast buffer full, dropping event")
	}
}

func (h *Hub) Stop() {
	h.once.Do(func() {
		close(h.done)
	})
}
