package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Listing modes.
const (
	ServiceModeOffer  = "offer"
	ServiceModeDemand = "demand"
)

// Service represents the services table (a marketplace listing).
type Service struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Category      string    `gorm:"not null;index"`
	Subcategory   sql.NullString
	CustomService sql.NullString
	PriceType     sql.NullString
	Price         sql.NullFloat64
	City          sql.NullString `gorm:"index"`
	Description   sql.NullString
	Mode          string `gorm:"not null;default:offer"`
	Images        string `gorm:"type:text"` // JSON-encoded list of image URLs
	MainImg       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Service) TableName() string {
	return "services"
}
