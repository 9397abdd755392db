package models

// Application-level heartbeat markers exchanged as raw text frames.
const (
	HeartbeatPing = "ping"
	HeartbeatPong = "pong"
)

// RoomPrefix namespaces pub/sub channels so one subscription pattern covers
// every conversation room.
const RoomPrefix = "chat:"

// RoomName returns the fan-out channel backing a conversation.
func RoomName(conversationID string) string {
	return RoomPrefix + conversationID
}

// RoomEvent is the envelope published to a room. ConnID identifies the
// originating connection so delivery can skip it without excluding other
// devices of the same user.
type RoomEvent struct {
	Room           string      `json:"room"`
	ConversationID string      `json:"conversationId"`
	ConnID         string      `json:"connId"`
	Message        ChatMessage `json:"message"`
}

// ErrorFrame is the structured error object sent to a single client.
type ErrorFrame struct {
	Error string `json:"error"`
}
