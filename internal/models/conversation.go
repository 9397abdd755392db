package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Conversation is the durable two-party chat thread between a buyer and a
// seller. Participants is an unordered pair; PairKey is its normalized form
// and carries the unique index that makes find-or-create race-safe.
type Conversation struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Participants pq.StringArray `gorm:"type:text[];not null" json:"participants"`
	PairKey      string         `gorm:"uniqueIndex;not null" json:"-"`
	LastUpdated  time.Time      `gorm:"autoUpdateTime" json:"lastUpdated"`
}

// PairKey normalizes an unordered participant pair into a stable lookup key.
func PairKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// BeforeCreate generates the opaque conversation id and pair key if unset.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.PairKey == "" && len(c.Participants) == 2 {
		c.PairKey = PairKey(c.Participants[0], c.Participants[1])
	}
	return
}

// HasParticipant reports whether the given user belongs to the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer of the given user, or "" when the
// conversation does not contain two distinct participants including userID.
func (c *Conversation) OtherParticipant(userID string) string {
	if !c.HasParticipant(userID) {
		return ""
	}
	for _, id := range c.Participants {
		if id != userID {
			return id
		}
	}
	return ""
}
