package repository

import (
	"context"

	"uslugo/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &PostgresReviewRepository{db: db}
}

func (r *PostgresReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *PostgresReviewRepository) ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Where("reviewed_user_id = ?", reviewedUserID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}
