package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"marketchat/backend/internal/models"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// Storage is the full data-layer contract: conversation metadata in
// PostgreSQL, messages and room fan-out in Redis.
type Storage interface {
	GetItemSellerID(itemID string) (string, error)
	ResolveConversation(buyerID, sellerID string) (*models.Conversation, error)
	GetConversationByID(id string) (*models.Conversation, error)
	ListUserConversations(userID string) ([]models.Conversation, error)
	TouchConversation(id string) error

	AppendMessage(conversationID string, msg models.ChatMessage) error
	ListMessages(conversationID string) ([]models.ChatMessage, error)

	PublishRoom(room string, ev models.RoomEvent) error
	SubscribeRooms() (<-chan models.RoomEvent, error)
}

// Service implements Storage over a GORM connection and a Redis client.
type Service struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Ctx        context.Context
	MessageTTL time.Duration

	log *slog.Logger
}

// NewService wires the storage layer. messageTTL bounds the retention of
// chat messages in Redis; logger may be nil.
func NewService(db *gorm.DB, rdb *redis.Client, messageTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		DB:         db,
		Redis:      rdb,
		Ctx:        context.Background(),
		MessageTTL: messageTTL,
		log:        logger,
	}
}
