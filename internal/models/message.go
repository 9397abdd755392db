package models

import (
	"sort"
	"time"
)

// MaxContentLength is the upstream contract for message content; the REST
// append path enforces it, the socket path trusts the caller.
const MaxContentLength = 400

// SystemSenderID marks join/leave notices emitted by the server itself.
const SystemSenderID = "server"

// ChatMessage is the wire and storage representation of a single message.
// Identity is implicit in the store key (conversation id + timestamp); there
// is no separate message id.
type ChatMessage struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

// NewChatMessage stamps a message with the current UTC time.
func NewChatMessage(senderID, receiverID, content string) ChatMessage {
	return ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// ParsedTimestamp returns the message time, or the zero time when the
// timestamp is unparseable. Display ordering is by this value, not by
// insertion order.
func (m ChatMessage) ParsedTimestamp() time.Time {
	t, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortMessagesByTimestamp orders messages ascending by parsed timestamp.
func SortMessagesByTimestamp(msgs []ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].ParsedTimestamp().Before(msgs[j].ParsedTimestamp())
	})
}
