package chathub_test

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/models"
)

// MockStore is a testify mock of the chathub.Store capability interface.
// Events backs SubscribeRooms; tests push into it (or wire PublishRoom to
// loop back into it) to simulate the pub/sub fabric.
type MockStore struct {
	mock.Mock
	Events chan models.RoomEvent
}

func newMockStore() *MockStore {
	return &MockStore{Events: make(chan models.RoomEvent, 16)}
}

func (m *MockStore) AppendMessage(conversationID string, msg models.ChatMessage) error {
	args := m.Called(conversationID, msg)
	return args.Error(0)
}

func (m *MockStore) TouchConversation(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) PublishRoom(room string, ev models.RoomEvent) error {
	args := m.Called(room, ev)
	return args.Error(0)
}

func (m *MockStore) SubscribeRooms() (<-chan models.RoomEvent, error) {
	args := m.Called()
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}
	return m.Events, nil
}

// loopback wires PublishRoom straight into the subscription channel, the way
// Redis Pub/Sub behaves for a single hub.
func (m *MockStore) loopback() {
	m.On("PublishRoom", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		m.Events <- args.Get(1).(models.RoomEvent)
	})
}

// mockClient is an in-memory chathub.Client capturing delivered frames.
type mockClient struct {
	ctx       chathub.ConnectionContext
	send      chan []byte
	closeOnce sync.Once
}

func newMockClient(connID, userID, conversationID, peerID string) *mockClient {
	return &mockClient{
		ctx: chathub.ConnectionContext{
			ConnID:         connID,
			UserID:         userID,
			ConversationID: conversationID,
			Room:           models.RoomName(conversationID),
			PeerID:         peerID,
		},
		send: make(chan []byte, 8),
	}
}

func (c *mockClient) GetConnID() string             { return c.ctx.ConnID }
func (c *mockClient) GetUserID() string             { return c.ctx.UserID }
func (c *mockClient) GetRoomID() string             { return c.ctx.Room }
func (c *mockClient) GetConversationID() string     { return c.ctx.ConversationID }
func (c *mockClient) GetPeerID() string             { return c.ctx.PeerID }
func (c *mockClient) GetSendChannel() chan<- []byte { return c.send }
func (c *mockClient) Run()                          {}

func (c *mockClient) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// received returns a delivered frame without blocking.
func (c *mockClient) received() ([]byte, bool) {
	select {
	case payload := <-c.send:
		return payload, true
	default:
		return nil, false
	}
}
