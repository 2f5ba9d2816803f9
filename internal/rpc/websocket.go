package rpc

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsSendBuffer = 256
)

// wsEvent is the envelope every frame on the feed uses
type wsEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notification is one operator-facing event pushed on the feed
type Notification struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Hub fans ledger summaries and notifications out to every connected
// websocket client. It also implements the pipeline's notification sink,
// which is how submission outcomes reach the feed.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}

	broadcast chan []byte
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*wsClient]struct{}),
		broadcast: make(chan []byte, wsSendBuffer),
	}
}

// Run pumps broadcast frames to clients until ctx is cancelled, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow client; drop the frame rather than stall the feed
				}
			}
			h.mu.RUnlock()
		}
	}
}

// ServeHTTP upgrades the request and attaches the client to the feed
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// BroadcastSummary pushes a ledger summary frame
func (h *Hub) BroadcastSummary(s LedgerSummary) {
	h.publish(wsEvent{Type: "ledger", Payload: s})
}

// Notify implements the submission pipeline's notification sink
func (h *Hub) Notify(severity, title, message string) {
	h.publish(wsEvent{Type: "notification", Payload: Notification{
		Severity: severity,
		Title:    title,
		Message:  message,
	}})
}

func (h *Hub) publish(e wsEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("failed to marshal ws event: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

// readPump drains incoming frames; the feed is push-only, so reads exist to
// detect the peer going away.
func (h *Hub) readPump(c *wsClient) {
	defer h.detach(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) detach(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
