package repository

import (
	"context"
	"errors"

	"uslugo/internal/domain"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &PostgresServiceRepository{db: db}
}

func (r *PostgresServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *PostgresServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Service{}, uslugo_errors.ErrNotFound
		}
		return domain.Service{}, err
	}
	return s, nil
}

func (r *PostgresServiceRepository) GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}
	var services []domain.Service
	err := r.db.WithContext(ctx).Where("id IN (?)", ids).Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *PostgresServiceRepository) Update(ctx context.Context, s domain.Service) error {
	res := r.db.WithContext(ctx).Save(&s)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return uslugo_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresServiceRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Service{}, "id = ? AND user_id = ?", id, ownerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return uslugo_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresServiceRepository) ListAll(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *PostgresServiceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Service, error) {
	var services []domain.Service
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *PostgresServiceRepository) Filter(ctx context.Context, f ServiceFilter) ([]domain.Service, error) {
	q := r.db.WithContext(ctx).Model(&domain.Service{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Subcategory != "" {
		q = q.Where("subcategory = ?", f.Subcategory)
	}
	if f.CustomService != "" {
		q = q.Where("custom_service = ?", f.CustomService)
	}
	if f.PriceType != "" {
		q = q.Where("price_type = ?", f.PriceType)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var services []domain.Service
	if err := q.Order("created_at DESC").Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}
