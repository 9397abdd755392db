package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"marketchat/backend/internal/models"
)

func TestPairKey_OrderInsensitive(t *testing.T) {
	assert.Equal(t, models.PairKey("alice", "bob"), models.PairKey("bob", "alice"))
	assert.NotEqual(t, models.PairKey("alice", "bob"), models.PairKey("alice", "carol"))
}

func TestConversationBeforeCreate_GeneratesIDAndPairKey(t *testing.T) {
	conv := &models.Conversation{
		Participants: pq.StringArray{"bob", "alice"},
	}

	err := conv.BeforeCreate(nil)
	assert.NoError(t, err)

	_, parseErr := uuid.Parse(conv.ID)
	assert.NoError(t, parseErr, "conversation id must be a valid UUID")
	assert.Equal(t, models.PairKey("alice", "bob"), conv.PairKey)
}

func TestConversationBeforeCreate_PreservesExistingID(t *testing.T) {
	existing := uuid.New().String()
	conv := &models.Conversation{
		ID:           existing,
		Participants: pq.StringArray{"alice", "bob"},
		PairKey:      "custom",
	}

	err := conv.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existing, conv.ID)
	assert.Equal(t, "custom", conv.PairKey)
}

func TestConversation_Participants(t *testing.T) {
	conv := &models.Conversation{Participants: pq.StringArray{"alice", "bob"}}

	assert.True(t, conv.HasParticipant("alice"))
	assert.True(t, conv.HasParticipant("bob"))
	assert.False(t, conv.HasParticipant("carol"))

	assert.Equal(t, "bob", conv.OtherParticipant("alice"))
	assert.Equal(t, "alice", conv.OtherParticipant("bob"))
	assert.Equal(t, "", conv.OtherParticipant("carol"), "non-participant has no peer")
}

func TestConversation_OtherParticipant_Degenerate(t *testing.T) {
	single := &models.Conversation{Participants: pq.StringArray{"alice"}}
	assert.Equal(t, "", single.OtherParticipant("alice"))

	duplicated := &models.Conversation{Participants: pq.StringArray{"alice", "alice"}}
	assert.Equal(t, "", duplicated.OtherParticipant("alice"))
}
