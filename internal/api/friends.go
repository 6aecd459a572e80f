package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/chat"
	"github.com/davidgault/parley/internal/models"
)

// FriendHandler handles the friend-graph routes
type FriendHandler struct {
	store  *chat.Store
	logger *zap.SugaredLogger
}

func NewFriendHandler(store *chat.Store, logger *zap.SugaredLogger) *FriendHandler {
	return &FriendHandler{store: store, logger: logger}
}

// SendRequest sends a friend request to the user in the body. Responds with
// sent=false when the request was a no-op (already friends or already
// pending).
func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input models.UserIDRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sent, err := h.store.SendRequest(c.Request.Context(), userID, input.UserID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// AcceptRequest accepts a pending request from the user in the path and
// returns the direct conversation for the new friendship
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requesterID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conv, err := h.store.AcceptRequest(c.Request.Context(), userID, requesterID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversation": conv})
}

// RejectRequest rejects a pending request; rejecting an absent request is a
// no-op
func (h *FriendHandler) RejectRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requesterID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if err := h.store.RejectRequest(c.Request.Context(), userID, requesterID); err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListFriends returns the caller's friends
func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	friends, err := h.store.Friends(userID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	out := make([]models.UserResponse, 0, len(friends))
	for i := range friends {
		out = append(out, models.NewUserResponse(&friends[i]))
	}
	c.JSON(http.StatusOK, out)
}

// ListIncoming returns the users with a pending request to the caller
func (h *FriendHandler) ListIncoming(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	requesters, err := h.store.IncomingRequests(userID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	out := make([]models.UserResponse, 0, len(requesters))
	for i := range requesters {
		out = append(out, models.NewUserResponse(&requesters[i]))
	}
	c.JSON(http.StatusOK, out)
}
