package webserver

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"net/http"
	"time"
)

const (
	// writeTimeout is the timeout for writing a message to the peer.
	writeTimeout = 10 * time.Second
	// pingInterval is the interval in which pings are sent to the peer. Must be
	// less than pongTimeout.
	pingInterval = (pongTimeout * 9) / 10
	// pongTimeout is the timeout for waiting for the next pong message from the
	// peer. Must be greater than pingInterval.
	pongTimeout = 60 * time.Second
	// maxMessageSize is the maximum message size allowed from peer.
	maxMessageSize = 512
	// sendBufferSize is the number of snapshots that may be queued per client.
	sendBufferSize = 8
)

// client holds a websocket connection and is used by Hub.
type client struct {
	id     uuid.UUID
	logger *zap.Logger
	hub    *Hub
	// connection is the actual websocket connection.
	connection *websocket.Conn
	// send receives messages to write to the connection. It is closed by the hub.
	send chan []byte
}

// readPump reads from the connection until it fails. Clients are not expected
// to send anything but pongs and close messages.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		_ = c.connection.Close()
	}()
	c.connection.SetReadLimit(maxMessageSize)
	_ = c.connection.SetReadDeadline(time.Now().Add(pongTimeout))
	c.connection.SetPongHandler(func(string) error {
		_ = c.connection.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})
	for {
		_, _, err := c.connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}
	}
}

// writePump forwards outgoing messages from the hub to the websocket
// connection. It stops when the hub closes the send-channel.
func (c *client) writePump() {
	pingTicker := time.NewTicker(pingInterval)
	defer func() {
		pingTicker.Stop()
		_ = c.connection.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.connection.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				err := c.connection.WriteMessage(websocket.CloseMessage, []byte{})
				if err != nil {
					c.logger.Debug("write close message", zap.Error(err))
				}
				return
			}
			err := c.connection.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				c.logger.Debug("write text message", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			_ = c.connection.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("write ping", zap.Error(err))
				return
			}
		}
	}
}

// handleWS upgrades requests to websocket connections and registers them at the
// Hub.
func (h *Hub) handleWS() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Debug("upgrade connection", zap.Error(err))
			return
		}
		id := uuid.New()
		c := &client{
			id:         id,
			logger:     h.logger.With(zap.Any("client_id", id)),
			hub:        h,
			connection: conn,
			send:       make(chan []byte, sendBufferSize),
		}
		select {
		case <-h.stopped:
			_ = conn.Close()
			return
		case h.register <- c:
		}
		go c.writePump()
		go c.readPump()
	}
}
