package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketchat/backend/internal/storage"
)

// GetItemConversation resolves (or creates) the conversation between the
// authenticated buyer and the item's seller and mints the short-lived token
// that authorizes the socket handshake.
func (h *Handler) GetItemConversation(c *gin.Context) {
	buyerID := sessionUserID(c)
	itemID := c.Param("id")

	sellerID, err := h.Storage.GetItemSellerID(itemID)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.Logger.Error("failed to resolve item seller", "item_id", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong creating conversation"})
		return
	}

	conv, err := h.Storage.ResolveConversation(buyerID, sellerID)
	if err != nil {
		h.Logger.Error("failed to resolve conversation", "item_id", itemID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong creating conversation"})
		return
	}

	tempToken, err := h.Tokens.IssueConnectToken(buyerID)
	if err != nil {
		h.Logger.Error("failed to issue connect token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversationId": conv.ID, "tempToken": tempToken})
}

// ListUserConversations returns the conversations the authenticated user
// participates in, most recently active first.
func (h *Handler) ListUserConversations(c *gin.Context) {
	userID := sessionUserID(c)
	if c.Param("id") != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	conversations, err := h.Storage.ListUserConversations(userID)
	if err != nil {
		h.Logger.Error("failed to list conversations", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

// GetConnectToken mints a fresh connection token for the authenticated user.
// This is how the second participant of an existing conversation obtains a
// credential for the socket handshake.
func (h *Handler) GetConnectToken(c *gin.Context) {
	userID := sessionUserID(c)
	if c.Param("id") != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	tempToken, err := h.Tokens.IssueConnectToken(userID)
	if err != nil {
		h.Logger.Error("failed to issue connect token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tempToken": tempToken})
}
