package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-warehouse/internal/worker"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

const (
	// broadcastBuffer bounds queued messages; Publish drops instead of blocking.
	broadcastBuffer = 64
	// finishedWait is how long a task's final event may wait for queue space.
	finishedWait = 5 * time.Second
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Message is the JSON envelope pushed to every client.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	Clients    map[Conn]bool
	Register   chan Conn
	Unregister chan Conn
	Broadcast  chan []byte
	mutex      sync.Mutex

	log  zerolog.Logger
	done chan struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Conn]bool),
		Register:   make(chan Conn),
		Unregister: make(chan Conn),
		Broadcast:  make(chan []byte, broadcastBuffer),
		log:        log.With().Str("component", "ws_hub").Logger(),
		done:       make(chan struct{}),
	}
}

// Run dispatches messages until ctx ends, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			h.log.Debug().Int("clients", n).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("dropping ws client")
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues an event for all clients. It never blocks: when the queue is
// full the event is dropped.
func (h *Hub) Publish(eventType string, payload interface{}) {
	h.enqueue(eventType, payload, 0)
}

// enqueue waits up to wait for queue space; zero means drop right away.
func (h *Hub) enqueue(eventType string, payload interface{}, wait time.Duration) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("type", eventType).Msg("encode ws message")
		return
	}
	if wait <= 0 {
		select {
		case h.Broadcast <- data:
		default:
			h.log.Warn().Str("type", eventType).Msg("ws broadcast queue full, event dropped")
		}
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case h.Broadcast <- data:
	case <-h.done:
	case <-timer.C:
		h.log.Warn().Str("type", eventType).Dur("waited", wait).Msg("ws broadcast queue full, event dropped")
	}
}

// TaskListener forwards runner events to the connected clients. Progress is
// best effort; the finished event waits for queue space, bounded by
// finishedWait.
func (h *Hub) TaskListener() worker.Listener {
	return func(ev worker.Event) {
		wait := time.Duration(0)
		if ev.Type == worker.EventFinished {
			wait = finishedWait
		}
		h.enqueue(string(ev.Type), ev, wait)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Serve keeps one upgraded connection registered until the peer goes away.
// Incoming frames are read only to notice the disconnect.
func (h *Hub) Serve(c *websocket.Conn) {
	select {
	case h.Register <- c:
	case <-h.done:
		c.Close()
		return
	}
	defer func() {
		select {
		case h.Unregister <- c:
		case <-h.done:
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
