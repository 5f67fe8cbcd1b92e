package services

import (
	"context"
	"database/sql"
	"math"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

type ReviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, userRepo repository.UserRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, userRepo: userRepo}
}

type ReviewInput struct {
	ReviewedUserID string
	Rating         int
	Comment        string
}

// ReviewEntry is a review joined with the reviewer's display data.
type ReviewEntry struct {
	ID               string    `json:"id"`
	ReviewerID       string    `json:"reviewerId"`
	ReviewerFullName string    `json:"reviewerFullName"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type ReviewSummary struct {
	Reviews       []ReviewEntry `json:"reviews"`
	Count         int           `json:"count"`
	AverageRating float64       `json:"averageRating"`
}

func (s *ReviewService) Create(ctx context.Context, reviewerID uuid.UUID, in ReviewInput) (domain.Review, error) {
	if in.ReviewedUserID == "" || in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, uslugo_errors.ErrInvalidInput
	}

	reviewedID, err := uuid.Parse(in.ReviewedUserID)
	if err != nil {
		return domain.Review{}, uslugo_errors.ErrInvalidInput
	}
	// Users cannot review themselves.
	if reviewedID == reviewerID {
		return domain.Review{}, uslugo_errors.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, reviewedID); err != nil {
		return domain.Review{}, err
	}

	review := domain.Review{
		ID:             uuid.New(),
		ReviewerID:     reviewerID,
		ReviewedUserID: reviewedID,
		Rating:         in.Rating,
		Comment:        sql.NullString{String: in.Comment, Valid: in.Comment != ""},
		CreatedAt:      time.Now(),
	}
	if err := s.reviewRepo.Create(ctx, &review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

func (s *ReviewService) ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]ReviewEntry, error) {
	reviews, err := s.reviewRepo.ListForUser(ctx, reviewedUserID)
	if err != nil {
		return nil, err
	}
	return s.toEntries(ctx, reviews), nil
}

// Summary returns the reviews plus their count and average rating
// rounded to one decimal.
func (s *ReviewService) Summary(ctx context.Context, reviewedUserID uuid.UUID) (ReviewSummary, error) {
	reviews, err := s.reviewRepo.ListForUser(ctx, reviewedUserID)
	if err != nil {
		return ReviewSummary{}, err
	}

	summary := ReviewSummary{
		Reviews: s.toEntries(ctx, reviews),
		Count:   len(reviews),
	}
	if len(reviews) > 0 {
		sum := 0
		for _, r := range reviews {
			sum += r.Rating
		}
		avg := float64(sum) / float64(len(reviews))
		summary.AverageRating = math.Round(avg*10) / 10
	}
	return summary, nil
}

func (s *ReviewService) toEntries(ctx context.Context, reviews []domain.Review) []ReviewEntry {
	entries := make([]ReviewEntry, 0, len(reviews))
	for _, r := range reviews {
		entry := ReviewEntry{
			ID:         r.ID.String(),
			ReviewerID: r.ReviewerID.String(),
			Rating:     r.Rating,
			CreatedAt:  r.CreatedAt,
		}
		if r.Comment.Valid {
			entry.Comment = r.Comment.String
		}
		if reviewer, err := s.userRepo.GetByID(ctx, r.ReviewerID); err == nil {
			entry.ReviewerFullName = reviewer.FullName
		}
		entries = append(entries, entry)
	}
	return entries
}
