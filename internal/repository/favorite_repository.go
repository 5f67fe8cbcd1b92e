package repository

import (
	"context"
	"errors"

	"uslugo/internal/domain"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresFavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &PostgresFavoriteRepository{db: db}
}

func (r *PostgresFavoriteRepository) ListServiceIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("service_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresFavoriteRepository) Exists(ctx context.Context, userID, serviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFavoriteRepository) Add(ctx context.Context, f *domain.Favorite) error {
	res := r.db.WithContext(ctx).Create(f)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return uslugo_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresFavoriteRepository) Remove(ctx context.Context, userID, serviceID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&domain.Favorite{}, "user_id = ? AND service_id = ?", userID, serviceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return uslugo_errors.ErrNotFound
	}
	return nil
}
