package chathub

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"marketchat/backend/internal/models"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Content is capped at 400 characters upstream; leave headroom for
	// multi-byte runes.
	maxMessageSize = 2048
)

// WebSocketClient is the gorilla/websocket implementation of Client. One
// read pump and one write pump run per connection; the connection context is
// immutable after the handshake.
type WebSocketClient struct {
	Ctx  ConnectionContext
	Conn *websocket.Conn
	Hub  *Hub
	Send chan []byte

	log *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewWebSocketClient wraps an upgraded connection; logger may be nil.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, ctx ConnectionContext, logger *slog.Logger) *WebSocketClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketClient{
		Ctx:  ctx,
		Conn: conn,
		Hub:  hub,
		Send: make(chan []byte, 256),
		log:  logger,
	}
}

func (c *WebSocketClient) GetConnID() string             { return c.Ctx.ConnID }
func (c *WebSocketClient) GetUserID() string             { return c.Ctx.UserID }
func (c *WebSocketClient) GetRoomID() string             { return c.Ctx.Room }
func (c *WebSocketClient) GetConversationID() string     { return c.Ctx.ConversationID }
func (c *WebSocketClient) GetPeerID() string             { return c.Ctx.PeerID }
func (c *WebSocketClient) GetSendChannel() chan<- []byte { return c.Send }

// Run starts the pumps. The caller must have registered the client with the
// hub first so no frame is processed before the room subscription exists.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. The read pump
// stops on its own when the connection closes.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("error reading message", "user_id", c.Ctx.UserID, "error", err)
			}
			break
		}

		payload := strings.TrimSpace(string(raw))
		if payload == "" {
			continue
		}

		// Application-level heartbeat: answer the sender directly, no
		// persistence, no fan-out.
		if payload == models.HeartbeatPing {
			c.enqueue([]byte(models.HeartbeatPong))
			continue
		}

		// Should not happen post-handshake, but a broken context must
		// never fan out.
		if c.Ctx.Room == "" || c.Ctx.UserID == "" || c.Ctx.PeerID == "" || c.Ctx.ConversationID == "" {
			c.sendError("Something went wrong sending the message, please try again later.")
			continue
		}

		c.Hub.IncomingCh <- models.RoomEvent{
			Room:           c.Ctx.Room,
			ConversationID: c.Ctx.ConversationID,
			ConnID:         c.Ctx.ConnID,
			Message:        models.NewChatMessage(c.Ctx.UserID, c.Ctx.PeerID, payload),
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			// Transport-level keepalive, distinct from the
			// application heartbeat.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue writes to the send channel without blocking the read pump. The
// channel may already be closed if the hub dropped the connection.
func (c *WebSocketClient) enqueue(payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- payload:
	default:
		c.log.Warn("send buffer full, dropping frame", "user_id", c.Ctx.UserID)
	}
}

func (c *WebSocketClient) sendError(message string) {
	payload, err := json.Marshal(models.ErrorFrame{Error: message})
	if err != nil {
		return
	}
	c.enqueue(payload)
}
