package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/mcoot/matchmaker/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 16

	// SSE event name used for every notification
	notificationEvent = "notification"
)

// SSEClient is a participant connected over server-sent events
type SSEClient struct {
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Ensure SSEClient implements Conn
var _ Conn = (*SSEClient)(nil)

// NewSSEClient creates a new SSE client
func NewSSEClient() *SSEClient {
	return &SSEClient{
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Send queues message for delivery without blocking
func (c *SSEClient) Send(message []byte) error {
	select {
	case <-c.done:
		return model.ErrConnectionClosed
	default:
	}

	select {
	case c.send <- formatSSEMessage(notificationEvent, string(message)):
		return nil
	default:
		return model.ErrSendBufferFull
	}
}

// Close marks the client as disconnected
func (c *SSEClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ServeSSE streams notifications for id until the request ends
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, id model.ParticipantID) {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewSSEClient()
	hub.Register(id, client)

	// Ensure cleanup on disconnect
	defer func() {
		hub.Unregister(id, client)
		client.Close()
	}()

	// Send initial connection event
	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-client.send:
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-client.done:
			return

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an SSE message with event name and data
// Multi-line data is properly formatted with "data: " prefix on each line
func formatSSEMessage(eventName, data string) []byte {
	msg := "event: " + eventName + "\n"
	for _, line := range splitLines(data) {
		msg += "data: " + line + "\n"
	}
	msg += "\n"
	return []byte(msg)
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current string
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current)
			current = ""
		} else if r != '\r' {
			current += string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}
