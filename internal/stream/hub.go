package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Per-subscriber delivery limits. A subscriber whose queue fills or whose
// write misses the deadline is dropped; the analysis loop never waits for a
// peer that stopped reading.
const (
	writeTimeout   = 5 * time.Second
	sendQueueDepth = 16
)

// subscriber owns one connection. Writes happen only in its writeLoop, so a
// stalled peer blocks its own goroutine and nothing else.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans analysis results out to WebSocket subscribers. Slow or broken
// clients are dropped; the loop never waits for them.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*subscriber]bool

	broadcasts atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 64,
			CheckOrigin: func(r *http.Request) bool {
				// Results are read-only; any dashboard origin may subscribe.
				return true
			},
		},
		clients: make(map[*subscriber]bool),
	}
}

// HandleWS upgrades the request and subscribes the connection until it
// closes. Inbound messages are drained and discarded.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendQueueDepth)}

	h.mu.Lock()
	h.clients[sub] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("🌐 Subscriber connected (%d total)", count)

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

func (h *Hub) writeLoop(sub *subscriber) {
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(sub)
			return
		}
	}
}

func (h *Hub) readLoop(sub *subscriber) {
	defer h.drop(sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast queues one JSON payload for every subscriber and returns without
// waiting on any of them. A subscriber whose queue is already full has a
// stuck writer behind it and is dropped on the spot.
func (h *Hub) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️  Broadcast payload not serializable: %v", err)
		return
	}
	h.broadcasts.Add(1)

	var stalled []*subscriber
	h.mu.Lock()
	for sub := range h.clients {
		select {
		case sub.send <- data:
		default:
			delete(h.clients, sub)
			close(sub.send)
			log.Printf("🌐 Subscriber dropped, send queue full (%d total)", len(h.clients))
			stalled = append(stalled, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range stalled {
		sub.conn.Close()
	}
}

// ClientCount reports the current subscriber count.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcasts reports how many payloads were fanned out.
func (h *Hub) Broadcasts() int64 {
	return h.broadcasts.Load()
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.clients))
	for sub := range h.clients {
		subs = append(subs, sub)
		close(sub.send)
	}
	h.clients = make(map[*subscriber]bool)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.Close()
	}
}

// drop unregisters and closes one subscriber. Membership is checked under
// the lock so the send channel closes exactly once.
func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.clients[sub]; ok {
		delete(h.clients, sub)
		close(sub.send)
		log.Printf("🌐 Subscriber disconnected (%d total)", len(h.clients))
	}
	h.mu.Unlock()
	sub.conn.Close()
}
