package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon binds to localhost; the browser UI is served from another
	// port during development, so origin checks stay open.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla connection to the channel manager's Conn. One
// websocket may subscribe to several channels, so writes are serialized
// here (gorilla allows a single concurrent writer).
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// handleWebSocket upgrades the connection and serves subscribe/unsubscribe
// intents. When the read loop ends, every subscription held by this
// connection is released.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("WebSocket upgrade failed")
		return
	}

	conn := &wsConn{conn: raw}
	subscriptions := make(map[string]*channel.Subscriber)

	defer func() {
		for _, sub := range subscriptions {
			s.manager.Unsubscribe(sub)
		}
		_ = conn.Close()
	}()

	s.logger.Debug("WebSocket client connected")

	for {
		var req models.SubscribeRequest
		if err := raw.ReadJSON(&req); err != nil {
			s.logger.WithError(err).Debug("WebSocket client disconnected")
			return
		}

		switch req.Action {
		case "subscribe":
			if req.Channel == "" {
				continue
			}
			if _, exists := subscriptions[req.Channel]; exists {
				continue
			}
			subscriptions[req.Channel] = s.manager.Subscribe(req.Channel, conn)
			ack := models.Frame{Channel: req.Channel, Type: models.FrameSubscribed}
			if err := conn.WriteJSON(ack); err != nil {
				return
			}
		case "unsubscribe":
			if sub, exists := subscriptions[req.Channel]; exists {
				s.manager.Unsubscribe(sub)
				delete(subscriptions, req.Channel)
			}
		}
	}
}
