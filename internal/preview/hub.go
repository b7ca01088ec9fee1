// Package preview streams rendered frames to browsers over a websocket and
// serves a small health endpoint.
package preview

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-artery/internal/led"
)

// Frame is the message pushed to /ws clients. RGB is base64 in JSON.
type Frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

// Hub is an led.Driver that broadcasts frames to every connected client,
// throttled to one message per Throttle.
type Hub struct {
	Count    int
	Throttle time.Duration
	// Health supplies extra fields for /health, e.g. receiver counters.
	Health func() map[string]any

	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	frameID   uint64
	lastEmit  time.Time
	startTime time.Time
}

func NewHub(count int) *Hub {
	return &Hub{
		Count:     count,
		Throttle:  50 * time.Millisecond,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
	}
}

// Routes returns a mux with /ws and /health.
func (h *Hub) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

func (h *Hub) Write(rgb []byte) error {
	if h.Count > 0 && len(rgb) != h.Count*3 {
		return fmt.Errorf("%w: got %d bytes for %d pixels", led.ErrLength, len(rgb), h.Count)
	}
	h.mu.Lock()
	h.frameID++
	now := time.Now()
	if h.lastEmit.Add(h.Throttle).After(now) || len(h.clients) == 0 {
		h.mu.Unlock()
		return nil
	}
	h.lastEmit = now
	b, err := json.Marshal(Frame{T: now.UnixNano(), FrameID: h.frameID, RGB: rgb})
	h.mu.Unlock()
	if err != nil {
		return err
	}
	h.broadcast(b)
	return nil
}

func (h *Hub) broadcast(b []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    h.Count,
		"clients":  len(h.clients),
	}
	h.mu.RUnlock()
	if h.Health != nil {
		for k, v := range h.Health() {
			resp[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Close drops every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
	return nil
}
