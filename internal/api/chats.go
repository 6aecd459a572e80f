package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/chat"
	"github.com/davidgault/parley/internal/models"
)

// ChatHandler handles conversation and group routes
type ChatHandler struct {
	store  *chat.Store
	logger *zap.SugaredLogger
}

func NewChatHandler(store *chat.Store, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{store: store, logger: logger}
}

// ListChats returns the caller's conversations and groups as one list,
// newest activity first
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var out []models.ChatSummary
	for _, conv := range h.store.ConversationsFor(userID) {
		out = append(out, models.ChatSummary{
			ID:           conv.ID,
			Kind:         models.ChatKindDirect,
			Participants: conv.Participants,
			LastActivity: conv.LastActivity,
		})
	}
	for _, group := range h.store.GroupsFor(userID) {
		out = append(out, models.ChatSummary{
			ID:           group.ID,
			Kind:         models.ChatKindGroup,
			Name:         group.Name,
			Members:      group.Members,
			LastActivity: group.LastActivity,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})

	if out == nil {
		out = []models.ChatSummary{}
	}
	c.JSON(http.StatusOK, out)
}

// CreateDirect gets or creates the direct conversation with the user in the
// body
func (h *ChatHandler) CreateDirect(c *gin.Context) {
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

	conv, err := h.store.DirectConversation(c.Request.Context(), userID, input.UserID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// CreateGroup creates a group with the caller as creator and sole admin
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input models.CreateGroupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.store.CreateGroup(c.Request.Context(), input.Name, userID, input.MemberIDs, input.Description)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// AddMember adds the user in the body to the group; the caller must be an
// admin. Responds with added=false when the user was already a member.
func (h *ChatHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	groupID, err := uuid.Parse(c.Param("groupID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var input models.UserIDRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := h.store.AddMember(c.Request.Context(), groupID, userID, input.UserID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

// PromoteAdmin grants admin rights to the member in the body; the caller
// must be an admin
func (h *ChatHandler) PromoteAdmin(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	groupID, err := uuid.Parse(c.Param("groupID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var input models.UserIDRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.PromoteAdmin(c.Request.Context(), groupID, userID, input.UserID); err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
