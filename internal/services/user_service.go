package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/redis"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

// ObjectUploader stores a blob and returns its public URL.
type ObjectUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type UserService struct {
	userRepo repository.UserRepository
	uploader ObjectUploader
	lastSeen *redis.LastSeenStore
}

func NewUserService(userRepo repository.UserRepository, uploader ObjectUploader, lastSeen *redis.LastSeenStore) *UserService {
	return &UserService{userRepo: userRepo, uploader: uploader, lastSeen: lastSeen}
}

type UpdateProfileInput struct {
	FullName   *string
	BirthYear  *int
	Profession *string
	City       *string
	Phone      *string
	About      *string
}

// Profile is the user's own (or a publicly visible) profile view.
type Profile struct {
	ID         string     `json:"id"`
	FullName   string     `json:"fullName"`
	Email      string     `json:"email"`
	BirthYear  *int       `json:"birthYear,omitempty"`
	Profession string     `json:"profession,omitempty"`
	City       string     `json:"city,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	About      string     `json:"about,omitempty"`
	Avatar     string     `json:"avatar,omitempty"`
	IsOnline   bool       `json:"isOnline"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.toProfile(ctx, u), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (Profile, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	if in.FullName != nil && *in.FullName != "" {
		u.FullName = *in.FullName
	}
	if in.BirthYear != nil {
		u.BirthYear = sql.NullInt32{Int32: int32(*in.BirthYear), Valid: true}
	}
	if in.Profession != nil {
		u.Profession = sql.NullString{String: *in.Profession, Valid: true}
	}
	if in.City != nil {
		u.City = sql.NullString{String: *in.City, Valid: true}
	}
	if in.Phone != nil {
		u.Phone = sql.NullString{String: *in.Phone, Valid: true}
	}
	if in.About != nil {
		u.About = sql.NullString{String: *in.About, Valid: true}
	}
	u.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, u); err != nil {
		return Profile{}, err
	}
	return s.toProfile(ctx, u), nil
}

// UpdateAvatar uploads the image to object storage and records its URL
// on the user.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, filename, contentType string, body io.Reader) (Profile, error) {
	if s.uploader == nil {
		return Profile{}, uslugo_errors.ErrInvalidInput
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	key := fmt.Sprintf("avatars/%s/%d%s", userID, time.Now().UnixNano(), path.Ext(filename))
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return Profile{}, err
	}

	u.AvatarURL = sql.NullString{String: url, Valid: true}
	u.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, u); err != nil {
		return Profile{}, err
	}
	return s.toProfile(ctx, u), nil
}

func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) toProfile(ctx context.Context, u domain.User) Profile {
	p := Profile{
		ID:        u.ID.String(),
		FullName:  u.FullName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
	if u.BirthYear.Valid {
		year := int(u.BirthYear.Int32)
		p.BirthYear = &year
	}
	if u.Profession.Valid {
		p.Profession = u.Profession.String
	}
	if u.City.Valid {
		p.City = u.City.String
	}
	if u.Phone.Valid {
		p.Phone = u.Phone.String
	}
	if u.About.Valid {
		p.About = u.About.String
	}
	if u.AvatarURL.Valid {
		p.Avatar = u.AvatarURL.String
	}

	if s.lastSeen != nil {
		if status, err := s.lastSeen.Get(ctx, u.ID.String()); err == nil {
			p.IsOnline = status.IsOnline
			if !status.LastSeen.IsZero() {
				seen := status.LastSeen
				p.LastSeen = &seen
			}
		}
	}
	return p
}
