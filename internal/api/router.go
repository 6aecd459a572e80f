package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/chat"
	"github.com/davidgault/parley/internal/ws"
)

// NewRouter wires all handlers into a gin engine
func NewRouter(store *chat.Store, wsManager *ws.Manager, logger *zap.SugaredLogger, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := NewAuthHandler(store, logger)
	friendHandler := NewFriendHandler(store, logger)
	chatHandler := NewChatHandler(store, logger)
	messageHandler := NewMessageHandler(store, logger)

	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	authorized := router.Group("/api")
	authorized.Use(AuthMiddleware())
	{
		authorized.GET("/auth/me", authHandler.GetMe)
		authorized.GET("/users", authHandler.ListUsers)

		authorized.POST("/friends/requests", friendHandler.SendRequest)
		authorized.POST("/friends/requests/:userID/accept", friendHandler.AcceptRequest)
		authorized.POST("/friends/requests/:userID/reject", friendHandler.RejectRequest)
		authorized.GET("/friends", friendHandler.ListFriends)
		authorized.GET("/friends/requests", friendHandler.ListIncoming)

		authorized.GET("/conversations", chatHandler.ListChats)
		authorized.POST("/conversations/direct", chatHandler.CreateDirect)
		authorized.POST("/groups", chatHandler.CreateGroup)
		authorized.POST("/groups/:groupID/members", chatHandler.AddMember)
		authorized.POST("/groups/:groupID/admins", chatHandler.PromoteAdmin)

		authorized.POST("/chats/:chatID/messages", messageHandler.SendMessage)
		authorized.GET("/chats/:chatID/messages", messageHandler.ListMessages)
		authorized.POST("/messages/:messageID/reactions", messageHandler.React)
		authorized.PUT("/messages/:messageID/read", messageHandler.MarkRead)
	}

	if wsManager != nil {
		router.GET("/ws", WSAuthMiddleware(), wsManager.HandleWebSocket)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
