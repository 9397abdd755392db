package handler_test

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"marketchat/backend/internal/api/handler"
	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/models"
	"marketchat/backend/internal/storage"
	"marketchat/backend/internal/token"
)

// MockStorage is a testify mock of the storage.Storage interface. Events
// backs SubscribeRooms; appended records every persisted message so tests
// can assert on (or replay) the store contents.
type MockStorage struct {
	mock.Mock
	Events chan models.RoomEvent

	mu       sync.Mutex
	appended []models.ChatMessage
}

var _ storage.Storage = (*MockStorage)(nil)

func newMockStorage() *MockStorage {
	return &MockStorage{Events: make(chan models.RoomEvent, 16)}
}

func (m *MockStorage) GetItemSellerID(itemID string) (string, error) {
	args := m.Called(itemID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ResolveConversation(buyerID, sellerID string) (*models.Conversation, error) {
	args := m.Called(buyerID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStorage) GetConversationByID(id string) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStorage) ListUserConversations(userID string) ([]models.Conversation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}

func (m *MockStorage) TouchConversation(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) AppendMessage(conversationID string, msg models.ChatMessage) error {
	m.mu.Lock()
	m.appended = append(m.appended, msg)
	m.mu.Unlock()

	args := m.Called(conversationID, msg)
	return args.Error(0)
}

func (m *MockStorage) ListMessages(conversationID string) ([]models.ChatMessage, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) PublishRoom(room string, ev models.RoomEvent) error {
	args := m.Called(room, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeRooms() (<-chan models.RoomEvent, error) {
	args := m.Called()
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return m.Events, nil
}

// loopback wires PublishRoom into the subscription channel, standing in for
// Redis Pub/Sub.
func (m *MockStorage) loopback() {
	m.On("PublishRoom", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		m.Events <- args.Get(1).(models.RoomEvent)
	})
}

// appendedMessages returns a copy of everything persisted so far.
func (m *MockStorage) appendedMessages() []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatMessage, len(m.appended))
	copy(out, m.appended)
	return out
}

// testEnv wires a hub, handler and router over the mock storage, mirroring
// the wiring in cmd/main.go.
type testEnv struct {
	store  *MockStorage
	tokens *token.Service
	hub    *chathub.Hub
	server *httptest.Server
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := newMockStorage()
	store.On("SubscribeRooms").Return(nil)

	tokens := token.NewService("test-secret", 5*time.Minute, time.Hour)
	hub := chathub.NewHub(store, quiet)
	go hub.Run()

	h := handler.NewHandler(hub, store, tokens, quiet)

	r := gin.New()
	authed := r.Group("/", h.RequireSession())
	authed.GET("/items/:id/conversation", h.GetItemConversation)
	authed.GET("/messages/:conversationId", h.ListMessages)
	authed.POST("/messages/:conversationId", h.PostMessage)
	authed.GET("/users/:id/conversations", h.ListUserConversations)
	authed.GET("/users/:id/token", h.GetConnectToken)
	r.GET("/chat/connect", h.ServeChatSocket)

	return &testEnv{
		store:  store,
		tokens: tokens,
		hub:    hub,
		server: httptest.NewServer(r),
	}
}

func (e *testEnv) close() {
	e.server.Close()
}

func (e *testEnv) sessionFor(userID string) string {
	signed, err := e.tokens.IssueSessionToken(userID)
	if err != nil {
		panic(err)
	}
	return signed
}

func (e *testEnv) connectTokenFor(userID string) string {
	signed, err := e.tokens.IssueConnectToken(userID)
	if err != nil {
		panic(err)
	}
	return signed
}
