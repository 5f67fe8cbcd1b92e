package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite represents the favorites table: a (user, service) pair.
type Favorite struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ServiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (Favorite) TableName() string {
	return "favorites"
}
