package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message content kinds. The enum is closed: anything else is rejected
// at the service boundary.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeEmoji = "emoji"
)

// Message represents the messages table. Rows are append-only: after
// creation only IsRead may change, and only from false to true.
type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_sender_receiver"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_sender_receiver;index:idx_messages_receiver_unread"`
	Content    string    `gorm:"not null"`
	Type       string    `gorm:"not null;default:text"`
	IsRead     bool      `gorm:"not null;default:false;index:idx_messages_receiver_unread"`
	CreatedAt  time.Time `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
