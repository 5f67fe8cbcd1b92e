package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Review represents the reviews table.
type Review struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReviewerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ReviewedUserID uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating         int       `gorm:"not null"`
	Comment        sql.NullString
	CreatedAt      time.Time
}

func (Review) TableName() string {
	return "reviews"
}
