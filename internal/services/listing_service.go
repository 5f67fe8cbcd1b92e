package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

const maxDescriptionWords = 200

// ListingService manages marketplace service listings.
type ListingService struct {
	serviceRepo repository.ServiceRepository
	userRepo    repository.UserRepository
	uploader    ObjectUploader
}

func NewListingService(serviceRepo repository.ServiceRepository, userRepo repository.UserRepository, uploader ObjectUploader) *ListingService {
	return &ListingService{serviceRepo: serviceRepo, userRepo: userRepo, uploader: uploader}
}

type ListingInput struct {
	Category      string
	Subcategory   string
	CustomService string
	PriceType     string
	Price         *float64
	City          string
	Description   string
	Mode          string
}

// Listing is a service listing joined with the owner's display name.
type Listing struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	UserFullName  string    `json:"userFullName,omitempty"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	CustomService string    `json:"customService,omitempty"`
	PriceType     string    `json:"priceType,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	City          string    `json:"city,omitempty"`
	Description   string    `json:"description,omitempty"`
	Mode          string    `json:"mode"`
	Images        []string  `json:"images"`
	MainImg       int       `json:"mainImg"`
	CreatedAt     time.Time `json:"createdAt"`
}

func validateListing(in ListingInput) error {
	if in.Category == "" {
		return uslugo_errors.ErrInvalidInput
	}
	if in.Description != "" && len(strings.Fields(in.Description)) > maxDescriptionWords {
		return uslugo_errors.ErrInvalidInput
	}
	switch in.Mode {
	case "", domain.ServiceModeOffer, domain.ServiceModeDemand:
	default:
		return uslugo_errors.ErrInvalidInput
	}
	return nil
}

func (s *ListingService) Create(ctx context.Context, ownerID uuid.UUID, in ListingInput) (Listing, error) {
	if err := validateListing(in); err != nil {
		return Listing{}, err
	}
	if in.Mode == "" {
		in.Mode = domain.ServiceModeOffer
	}

	svc := domain.Service{
		ID:        uuid.New(),
		UserID:    ownerID,
		Category:  in.Category,
		Mode:      in.Mode,
		Images:    "[]",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	applyListingInput(&svc, in)

	if err := s.serviceRepo.Create(ctx, &svc); err != nil {
		return Listing{}, err
	}
	return s.toListing(ctx, svc), nil
}

func (s *ListingService) Update(ctx context.Context, ownerID, id uuid.UUID, in ListingInput) (Listing, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if svc.UserID != ownerID {
		return Listing{}, uslugo_errors.ErrNotFound
	}
	if err := validateListing(in); err != nil {
		return Listing{}, err
	}

	if in.Category != "" {
		svc.Category = in.Category
	}
	if in.Mode != "" {
		svc.Mode = in.Mode
	}
	applyListingInput(&svc, in)
	svc.UpdatedAt = time.Now()

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return Listing{}, err
	}
	return s.toListing(ctx, svc), nil
}

func (s *ListingService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.serviceRepo.Delete(ctx, id, ownerID)
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (Listing, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	return s.toListing(ctx, svc), nil
}

func (s *ListingService) ListAll(ctx context.Context) ([]Listing, error) {
	services, err := s.serviceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toListings(ctx, services), nil
}

func (s *ListingService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]Listing, error) {
	services, err := s.serviceRepo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.toListings(ctx, services), nil
}

func (s *ListingService) Filter(ctx context.Context, f repository.ServiceFilter) ([]Listing, error) {
	services, err := s.serviceRepo.Filter(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.toListings(ctx, services), nil
}

// AddImage uploads a listing image and appends its URL to the listing.
func (s *ListingService) AddImage(ctx context.Context, ownerID, id uuid.UUID, filename, contentType string, body io.Reader) (Listing, error) {
	if s.uploader == nil {
		return Listing{}, uslugo_errors.ErrInvalidInput
	}
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return Listing{}, err
	}
	if svc.UserID != ownerID {
		return Listing{}, uslugo_errors.ErrNotFound
	}

	key := fmt.Sprintf("listings/%s/%d%s", id, time.Now().UnixNano(), path.Ext(filename))
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return Listing{}, err
	}

	images := decodeImages(svc.Images)
	images = append(images, url)
	encoded, err := json.Marshal(images)
	if err != nil {
		return Listing{}, err
	}
	svc.Images = string(encoded)
	svc.UpdatedAt = time.Now()

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return Listing{}, err
	}
	return s.toListing(ctx, svc), nil
}

func applyListingInput(svc *domain.Service, in ListingInput) {
	svc.Subcategory = toNullString(in.Subcategory)
	svc.CustomService = toNullString(in.CustomService)
	svc.PriceType = toNullString(in.PriceType)
	svc.City = toNullString(in.City)
	svc.Description = toNullString(in.Description)
	if in.Price != nil {
		svc.Price = sql.NullFloat64{Float64: *in.Price, Valid: true}
	}
}

func toNullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func decodeImages(raw string) []string {
	var images []string
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &images)
	}
	if images == nil {
		images = []string{}
	}
	return images
}

func (s *ListingService) toListings(ctx context.Context, services []domain.Service) []Listing {
	listings := make([]Listing, 0, len(services))
	for _, svc := range services {
		listings = append(listings, s.toListing(ctx, svc))
	}
	return listings
}

func (s *ListingService) toListing(ctx context.Context, svc domain.Service) Listing {
	l := Listing{
		ID:        svc.ID.String(),
		UserID:    svc.UserID.String(),
		Category:  svc.Category,
		Mode:      svc.Mode,
		Images:    decodeImages(svc.Images),
		MainImg:   svc.MainImg,
		CreatedAt: svc.CreatedAt,
	}
	if svc.Subcategory.Valid {
		l.Subcategory = svc.Subcategory.String
	}
	if svc.CustomService.Valid {
		l.CustomService = svc.CustomService.String
	}
	if svc.PriceType.Valid {
		l.PriceType = svc.PriceType.String
	}
	if svc.Price.Valid {
		price := svc.Price.Float64
		l.Price = &price
	}
	if svc.City.Valid {
		l.City = svc.City.String
	}
	if svc.Description.Valid {
		l.Description = svc.Description.String
	}
	if owner, err := s.userRepo.GetByID(ctx, svc.UserID); err == nil {
		l.UserFullName = owner.FullName
	}
	return l
}
