package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/models"
	"marketchat/backend/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow any origin; tighten behind the gateway in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeChatSocket runs the connection handshake and, on success, upgrades to
// a WebSocket joined to the conversation's room. Every rejection happens
// before the upgrade so the client sees a plain HTTP status: 400 for missing
// parameters, 401 for a bad token, 404 when the conversation is unknown or
// the user is not a participant. Participation failures and missing
// conversations are indistinguishable on purpose.
func (h *Handler) ServeChatSocket(c *gin.Context) {
	conversationID := c.Query("conversationId")
	tokenString := c.Query("token")
	if conversationID == "" || tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing conversationId or token"})
		return
	}

	userID, err := h.Tokens.VerifyConnectToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conv, err := h.Storage.GetConversationByID(conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.Logger.Error("failed to load conversation", "conversation_id", conversationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	peerID := conv.OtherParticipant(userID)
	if peerID == "" {
		// Data invariant violation: fewer than two distinct participants.
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("failed to upgrade connection", "user_id", userID, "error", err)
		return
	}

	ctx := chathub.ConnectionContext{
		ConnID:         uuid.New().String(),
		UserID:         userID,
		ConversationID: conversationID,
		Room:           models.RoomName(conversationID),
		PeerID:         peerID,
	}
	client := chathub.NewWebSocketClient(h.Hub, conn, ctx, h.Logger)

	// Registration completes before the pumps start, so the room
	// subscription exists before any frame can be processed.
	h.Hub.RegisterCh <- client
	client.Run()
}
