package services

import (
	"context"
	"errors"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	serviceRepo  repository.ServiceRepository
	listings     *ListingService
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, serviceRepo repository.ServiceRepository, listings *ListingService) *FavoriteService {
	return &FavoriteService{favoriteRepo: favoriteRepo, serviceRepo: serviceRepo, listings: listings}
}

// List returns the user's favorited listings as full objects.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]Listing, error) {
	ids, err := s.favoriteRepo.ListServiceIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	services, err := s.serviceRepo.GetManyByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.listings.toListings(ctx, services), nil
}

// Toggle adds the service to the user's favorites, or removes it if it
// is already there. Returns true when the service ended up favorited.
func (s *FavoriteService) Toggle(ctx context.Context, userID uuid.UUID, serviceID string) (bool, error) {
	id, err := uuid.Parse(serviceID)
	if err != nil {
		return false, uslugo_errors.ErrInvalidInput
	}

	if _, err := s.serviceRepo.GetByID(ctx, id); err != nil {
		return false, err
	}

	exists, err := s.favoriteRepo.Exists(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if exists {
		if err := s.favoriteRepo.Remove(ctx, userID, id); err != nil && !errors.Is(err, uslugo_errors.ErrNotFound) {
			return false, err
		}
		return false, nil
	}

	fav := domain.Favorite{UserID: userID, ServiceID: id, CreatedAt: time.Now()}
	if err := s.favoriteRepo.Add(ctx, &fav); err != nil && !errors.Is(err, uslugo_errors.ErrAlreadyExists) {
		return false, err
	}
	return true, nil
}
