// internal/ws/client.go
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Client wraps one websocket connection subscribed to a merchant's
// delivery stream.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	merchantID string
	send       chan []byte
	closeOnce  sync.Once
	logger     *zap.Logger
}

// Serve registers the connection with the hub and pumps messages until
// either side goes away. It blocks for the life of the connection.
func Serve(hub *Hub, conn *websocket.Conn, merchantID string, logger *zap.Logger) {
	c := &Client{
		hub:        hub,
		conn:       conn,
		merchantID: merchantID,
		send:       make(chan []byte, sendBuffer),
		logger:     logger,
	}

	hub.register(c)
	go c.writePump()
	c.readPump()
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.hub.unregister(c)
		close(c.send)
		c.conn.Close()
	})
}

// readPump discards client frames; the stream is one-way. Reading is
// still required to process control frames and detect disconnects.
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("ws read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
