package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidgault/parley/internal/api"
	"github.com/davidgault/parley/internal/auth"
	"github.com/davidgault/parley/internal/chat"
	"github.com/davidgault/parley/internal/config"
	"github.com/davidgault/parley/internal/storage"
	"github.com/davidgault/parley/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("zap: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	auth.InitJWTKey([]byte(cfg.JWTSecret))

	adapter, err := storage.New(storage.Backend(cfg.StoreBackend), storage.Config{
		Path: cfg.DataFile,
		DSN:  cfg.DatabaseURL,
	}, sugar)
	if err != nil {
		sugar.Fatalf("storage: %v", err)
	}
	defer adapter.Close()
	sugar.Infow("storage ready", "backend", cfg.StoreBackend)

	store, err := chat.New(context.Background(), sugar, adapter)
	if err != nil {
		sugar.Fatalf("store: %v", err)
	}

	wsManager := ws.NewManager(sugar)
	go wsManager.Run()
	store.SetNotifier(wsManager)

	router := api.NewRouter(store, wsManager, sugar, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		sugar.Infow("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		sugar.Fatalf("forced shutdown: %v", err)
	}

	sugar.Info("server exited")
}
