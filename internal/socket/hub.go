// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"chemnitz-facilities-api/internal/favorite"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second

	// Default time allowed between pongs or messages from the client.
	defaultPongWait = 60 * time.Second
)

// client serialises writes; gorilla connections allow one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks the open websocket connections of each user.
type Hub struct {
	clients  map[string]map[*websocket.Conn]*client
	mu       sync.RWMutex
	pongWait time.Duration
	logger   *zap.Logger
}

type Option func(*Hub)

// WithPongWait sets how long a connection may stay silent before it is
// dropped. Pings go out at nine tenths of that interval.
func WithPongWait(d time.Duration) Option {
	return func(h *Hub) { h.pongWait = d }
}

func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		clients:  make(map[string]map[*websocket.Conn]*client),
		pongWait: defaultPongWait,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve registers conn under username and blocks until the peer goes away.
// The server pings the client periodically; every pong or message from the
// client extends the read deadline.
func (h *Hub) Serve(username string, conn *websocket.Conn) {
	c := h.register(username, conn)
	done := make(chan struct{})
	defer func() {
		close(done)
		h.unregister(username, conn)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	go h.heartbeat(c, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket closed unexpectedly", zap.String("username", username), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
}

func (h *Hub) heartbeat(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(h.pongWait * 9 / 10)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(username string, conn *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[username] == nil {
		h.clients[username] = make(map[*websocket.Conn]*client)
	}
	c := &client{conn: conn}
	h.clients[username][conn] = c
	h.logger.Debug("websocket client registered", zap.String("username", username))
	return c
}

func (h *Hub) unregister(username string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[username]
	if !ok {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, username)
	}
	h.logger.Debug("websocket client unregistered", zap.String("username", username))
}

// Connections returns how many sockets username currently has open.
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

// Send writes message to every connection of username. A user with no open
// connection is not an error.
func (h *Hub) Send(username string, message []byte) error {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[username]))
	for _, c := range h.clients[username] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	var firstErr error
	for _, c := range targets {
		if err := c.write(websocket.TextMessage, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Notify implements favorite.Notifier.
func (h *Hub) Notify(username string, event favorite.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("encode favorite event", zap.Error(err))
		return
	}
	if err := h.Send(username, payload); err != nil {
		h.logger.Warn("websocket send failed", zap.String("username", username), zap.Error(err))
	}
}
