package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxFrameSize = 1 << 20 // 1 MiB, base64 images inline
)

// Client is one live websocket connection. Writes go through the Send
// channel so the write loop is the only goroutine touching the socket.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.Mutex
	closed bool

	logger *zap.Logger
}

func NewClient(userID uuid.UUID, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		logger: logger,
	}
}

// SendMessage enqueues a frame without blocking. A receiver that cannot
// keep up loses the frame; durable state lives in the store, not here.
// After Close the frame is silently dropped, since another goroutine
// may still hold a stale registry lookup.
func (c *Client) SendMessage(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		c.logger.Warn("send buffer full, dropping frame",
			zap.String("user_id", c.UserID.String()),
			zap.String("client_id", c.ID.String()))
		return false
	}
}

// Close shuts the outbound channel exactly once, which in turn stops
// the write loop and closes the underlying connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// WriteLoop drains Send onto the socket and keeps the connection alive
// with pings. It exits when Send is closed or a write fails.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("write failed",
					zap.String("client_id", c.ID.String()),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
