// ===============================
// FILE: internal/handlers/api/v1/ranking/live.go
// ===============================

package ranking

import (
	"context"
	"net/http"
	"sync"
	"time"

	"taskmaster/internal/events"
	"taskmaster/internal/services"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type liveClient struct {
	conn *websocket.Conn
	send chan interface{}
}

// LiveHub pushes a fresh ranking to all connected websocket clients
// whenever a points, quest, or badge event fires.
type LiveHub struct {
	serviceCollection *services.ServiceCollection
	logger            *zap.Logger

	mu      sync.Mutex
	clients map[*liveClient]struct{}
}

// NewLiveHub creates the hub and subscribes it to the event bus.
func NewLiveHub(serviceCollection *services.ServiceCollection, logger *zap.Logger) (*LiveHub, error) {
	h := &LiveHub{
		serviceCollection: serviceCollection,
		logger:            logger,
		clients:           make(map[*liveClient]struct{}),
	}

	handler := events.NewEventHandlerFunc("ranking_live_feed", func(ctx context.Context, event events.Event) error {
		h.broadcast(ctx)
		return nil
	})
	for _, pattern := range []string{"points.*", "quest.*", "badge.*"} {
		if err := serviceCollection.EventBus.SubscribePattern(pattern, handler); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ServeWS handles GET /ws/ranking.
func (h *LiveHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &liveClient{
		conn: conn,
		send: make(chan interface{}, 8),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("Ranking feed client connected", zap.String("remote_addr", r.RemoteAddr))

	// Seed the new client with the current standings.
	if ranking, err := h.serviceCollection.Ranking.Rank(r.Context()); err == nil {
		client.send <- ranking
	}

	go h.writePump(client)
	h.readPump(client)
}

func (h *LiveHub) broadcast(ctx context.Context) {
	ranking, err := h.serviceCollection.Ranking.Rank(ctx)
	if err != nil {
		h.logger.Error("Failed to refresh ranking for live feed", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- ranking:
		default:
			// Slow consumer; drop this update rather than block the bus.
		}
	}
}

func (h *LiveHub) readPump(c *liveClient) {
	defer h.drop(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The feed is one-way; reads only service control frames.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveHub) writePump(c *liveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *LiveHub) drop(c *liveClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
	h.logger.Info("Ranking feed client disconnected")
}
