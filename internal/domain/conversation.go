package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table: one row per
// unordered participant pair, caching the most recent message. The
// row is a cache over messages, rebuildable by scanning them; it is
// never the source of truth.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ParticipantA  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair"`
	ParticipantB  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair"`
	LastMessageID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// PairKey canonicalizes an unordered participant pair: the
// lexicographically smaller UUID always comes first, so A→B and B→A
// resolve to the same conversation row.
func PairKey(x, y uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(x.String(), y.String()) <= 0 {
		return x, y
	}
	return y, x
}

// OtherParticipant returns the participant that is not the given user.
func (c Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}
