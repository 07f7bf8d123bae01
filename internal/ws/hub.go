package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/obsidianstack/valvecalc/internal/api"
	"github.com/obsidianstack/valvecalc/internal/calc"
	"github.com/obsidianstack/valvecalc/internal/valve"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	// maxFrameBytes bounds one incoming config frame.
	maxFrameBytes = 64 << 10
)

// Event names used in Message.Event.
const (
	EventReport  = "report"
	EventRefresh = "refresh"
	EventError   = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Allow all origins; apply CORS at the reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event  string        `json:"event"`
	Report *valve.Report `json:"report,omitempty"`
	Error  string        `json:"error,omitempty"`
	Code   string        `json:"code,omitempty"`
}

// Hub tracks connected calculator clients.
type Hub struct {
	svc      *calc.Service
	interval time.Duration

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu   sync.Mutex
	last []byte // last successful report, re-sent on refresh ticks
}

// New creates a Hub computing through svc. A positive interval enables
// refresh ticks once Run is started.
func New(svc *calc.Service, interval time.Duration) *Hub {
	return &Hub{
		svc:      svc,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run sends refresh ticks (when the interval is positive) until ctx is
// cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	var tick <-chan time.Time
	if h.interval > 0 {
		t := time.NewTicker(h.interval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-tick:
			h.refresh()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	slog.Debug("ws: client connected", "conn_id", c.id, "remote", r.RemoteAddr)
	defer slog.Debug("ws: client disconnected", "conn_id", c.id)

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// enqueue queues data for c. It reports false when c is gone or its buffer
// is full. The read lock keeps unregister from closing send mid-queue.
func (h *Hub) enqueue(c *client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) refresh() {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.mu.Lock()
		data := c.last
		c.mu.Unlock()
		if data == nil {
			continue
		}
		if !h.enqueue(c, data) {
			// Client's outgoing buffer is full; disconnect it.
			h.unregister(c)
		}
	}
}

// handle computes the reply for one incoming frame.
func (h *Hub) handle(c *client, frame []byte) []byte {
	var req api.ValvesRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		return encode(Message{Event: EventError, Error: "invalid request: " + err.Error(), Code: "bad_request"})
	}

	rep, err := h.svc.Compute(req.Config(h.svc.DefaultDecimals()))
	if err != nil {
		slog.Debug("ws: rejected config", "conn_id", c.id, "err", err)
		return encode(Message{Event: EventError, Error: err.Error(), Code: api.ErrorCode(err)})
	}

	refresh := encode(Message{Event: EventRefresh, Report: rep})
	c.mu.Lock()
	c.last = refresh
	c.mu.Unlock()

	return encode(Message{Event: EventReport, Report: rep})
}

func encode(m Message) []byte {
	data, _ := json.Marshal(m)
	return data
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads config frames and answers each one. Blocks until the
// connection closes.
func (h *Hub) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxFrameBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		typ, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if typ != websocket.TextMessage {
			continue
		}
		if !h.enqueue(c, h.handle(c, frame)) {
			return
		}
	}
}
