package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/chachabrian/carrental-backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the feed is public and read-only
	},
}

// Client is one websocket subscriber. CarID narrows the feed to a single
// car; empty means every car.
type Client struct {
	CarID string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

type hubMessage struct {
	carID string
	data  []byte
}

// Hub fans availability events out to websocket subscribers.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan hubMessage
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan hubMessage, 64),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg hubMessage) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.CarID != "" && client.CarID != msg.carID {
			continue
		}
		select {
		case client.Send <- msg.data:
		default:
			// Slow consumer; drop it rather than stall everyone else.
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

// GetConnectedClients returns the number of connected clients.
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// WebSocketMessage is the envelope written to subscribers.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// PublishAvailability queues ev for every matching subscriber.
func (h *Hub) PublishAvailability(ev AvailabilityEvent) {
	data, err := json.Marshal(WebSocketMessage{Type: ev.Type, Data: ev})
	if err != nil {
		slog.Error("marshal availability event", "error", err)
		return
	}
	select {
	case h.broadcast <- hubMessage{carID: ev.CarID, data: data}:
	default:
		slog.Warn("websocket broadcast queue full, dropping event", "car_id", ev.CarID)
	}
}

// BookingCreated makes the hub usable as a BookingNotifier when there is
// no redis channel to relay from.
func (h *Hub) BookingCreated(_ context.Context, b *models.Booking) {
	h.PublishAvailability(bookedEvent(b))
}

// RelayFrom forwards events published on the redis availability channel,
// including those from other instances, until ctx is done.
func (h *Hub) RelayFrom(ctx context.Context, client *redis.Client) {
	sub := client.Subscribe(ctx, AvailabilityChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev AvailabilityEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("bad availability event on channel", "error", err)
				continue
			}
			h.PublishAvailability(ev)
		}
	}
}

// HandleWebSocket upgrades the request and registers a subscriber.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, carID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		CarID: carID,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Hub:   hub,
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump discards client frames; it exists to process control frames
// and notice disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
