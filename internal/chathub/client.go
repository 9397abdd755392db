package chathub

// ConnectionContext is the per-connection state fixed at a successful
// handshake. It is never mutated afterwards and never shared between
// connections.
type ConnectionContext struct {
	ConnID         string
	UserID         string
	ConversationID string
	Room           string
	PeerID         string
}

// Client is the interface for one live connection to the hub. It abstracts
// the underlying transport so the hub can manage connections uniformly and
// tests can substitute fakes.
type Client interface {
	// GetConnID returns the unique id of this connection. A user on two
	// devices holds two distinct conn ids.
	GetConnID() string
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetRoomID returns the fan-out room the connection is subscribed to.
	GetRoomID() string
	// GetConversationID returns the conversation backing the room.
	GetConversationID() string
	// GetPeerID returns the other participant of the conversation.
	GetPeerID() string

	// GetSendChannel returns the channel the hub writes outbound frames to.
	GetSendChannel() chan<- []byte

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the outbound channel, stopping the write pump.
	Close()
}
