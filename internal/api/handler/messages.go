package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketchat/backend/internal/models"
)

// ListMessages returns the non-expired history of a conversation, ascending
// by timestamp. A conversation with no messages yields an empty array.
func (h *Handler) ListMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}

	messages, err := h.Storage.ListMessages(conversationID)
	if err != nil {
		h.Logger.Error("failed to list messages", "conversation_id", conversationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type postMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required,max=400"`
}

// PostMessage appends a message over plain HTTP. The socket path is the
// primary one; this mirrors it for clients without a live connection.
func (h *Handler) PostMessage(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversation id is required"})
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message body"})
		return
	}

	msg := models.NewChatMessage(sessionUserID(c), req.ReceiverID, req.Content)
	if err := h.Storage.AppendMessage(conversationID, msg); err != nil {
		h.Logger.Error("failed to save message", "conversation_id", conversationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}
	if err := h.Storage.TouchConversation(conversationID); err != nil {
		h.Logger.Warn("failed to touch conversation", "conversation_id", conversationID, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "message saved"})
}
