package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/auth"
	"github.com/davidgault/parley/internal/chat"
	"github.com/davidgault/parley/internal/models"
)

// AuthHandler handles registration, login and profile routes
type AuthHandler struct {
	store  *chat.Store
	logger *zap.SugaredLogger
}

func NewAuthHandler(store *chat.Store, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{store: store, logger: logger}
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.UserRegistration
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.Register(c.Request.Context(), input.DisplayName, input.Email, input.Password)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewUserResponse(&user))
}

// Login authenticates a user and issues a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.UserLogin
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.Authenticate(input.Email, input.Password)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	token, expiry, err := auth.GenerateToken(&user)
	if err != nil {
		h.logger.Errorw("token generation failed", "user", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"expiry": expiry,
		"user":   models.NewUserResponse(&user),
	})
}

// GetMe returns the current user's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	user, err := h.store.User(userID)
	if err != nil {
		respondStoreError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.NewUserResponse(&user))
}

// ListUsers returns every registered user except the caller
func (h *AuthHandler) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	users := h.store.Users()
	out := make([]models.UserResponse, 0, len(users))
	for i := range users {
		if users[i].ID == userID {
			continue
		}
		out = append(out, models.NewUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, out)
}
