package notify

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/matchmaker/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Pings are sent slightly more often than pongWait
	wsPingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSClient is a participant connected over a WebSocket.
// Send only queues; writePump owns every write to the connection.
type WSClient struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Ensure WSClient implements Conn
var _ Conn = (*WSClient)(nil)

// NewWSClient wraps an established WebSocket connection
func NewWSClient(conn *websocket.Conn) *WSClient {
	return &WSClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues message for delivery without blocking
func (c *WSClient) Send(message []byte) error {
	select {
	case <-c.done:
		return model.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- message:
		return nil
	default:
		return model.ErrSendBufferFull
	}
}

// Close marks the client as disconnected and stops its write pump
func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump drains queued messages and sends pings until the client closes
// or a write fails. A failed write closes the connection so the read loop exits.
func (c *WSClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// ServeWS upgrades the request and keeps id registered until the peer goes away
func ServeWS(w http.ResponseWriter, r *http.Request, hub *Hub, id model.ParticipantID, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed",
			slog.String("participant_id", id.String()),
			slog.Any("error", err))
		return
	}

	client := NewWSClient(conn)
	hub.Register(id, client)
	defer func() {
		hub.Unregister(id, client)
		client.Close()
	}()

	go client.writePump()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Inbound frames are not part of this protocol; reading only detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
