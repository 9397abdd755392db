package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"marketchat/backend/internal/api/handler"
	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/config"
	"marketchat/backend/internal/models"
	"marketchat/backend/internal/storage"
	"marketchat/backend/internal/token"
)

func setupDependencies(cfg config.Config, logger *slog.Logger) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Error("failed to connect PostgreSQL", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Error("failed to connect Redis", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Conversation{}, &models.Item{}); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	logger.Info("database and Redis connections established, migrations complete")
	return db, rdb
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded")
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, rdb := setupDependencies(cfg, logger)
	store := storage.NewService(db, rdb, cfg.MessageTTL, logger)
	tokens := token.NewService(cfg.JWTSecret, cfg.ConnectTokenTTL, cfg.SessionTokenTTL)

	hub := chathub.NewHub(store, logger)
	go func() {
		if err := hub.Run(); err != nil {
			logger.Error("chat hub stopped", "error", err)
			os.Exit(1)
		}
	}()

	r := gin.Default()
	h := handler.NewHandler(hub, store, tokens, logger)

	authed := r.Group("/", h.RequireSession())
	authed.GET("/items/:id/conversation", h.GetItemConversation)
	authed.GET("/messages/:conversationId", h.ListMessages)
	authed.POST("/messages/:conversationId", h.PostMessage)
	authed.GET("/users/:id/conversations", h.ListUserConversations)
	authed.GET("/users/:id/token", h.GetConnectToken)

	// The handshake authenticates with its own short-lived token, not the
	// session cookie, so it stays outside the session group.
	r.GET("/chat/connect", h.ServeChatSocket)

	// No WriteTimeout: it would also apply to hijacked WebSocket
	// connections; the pumps manage their own write deadlines.
	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Info("starting chat backend", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
