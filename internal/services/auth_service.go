package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"uslugo/config"
	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and verifies the bearer credentials that identify
// users everywhere else in the system. Verified identities are opaque
// uuid strings to the rest of the code.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryMin) * time.Minute,
	}
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.FullName == "" || in.Email == "" || len(in.Password) < 8 {
		return AuthResponse{}, uslugo_errors.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return AuthResponse{}, uslugo_errors.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	newUser := &domain.User{
		ID:           uuid.New(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResponse{}, err
	}

	accessToken, expiresIn, err := s.newAccessToken(newUser.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		User:        toUserInfo(*newUser),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResponse, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return AuthResponse{}, uslugo_errors.ErrInvalidInput
	}

	u, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return AuthResponse{}, uslugo_errors.ErrUnauthorized
	}

	if !u.IsActive {
		return AuthResponse{}, uslugo_errors.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResponse{}, uslugo_errors.ErrUnauthorized
	}

	accessToken, expiresIn, err := s.newAccessToken(u.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
		User:        toUserInfo(u),
	}, nil
}

// ParseAccessToken verifies a bearer credential and yields the stable
// user identifier it carries.
func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	if tokenString == "" {
		return AccessClaims{}, uslugo_errors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, uslugo_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return AccessClaims{}, uslugo_errors.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid {
		return AccessClaims{}, uslugo_errors.ErrUnauthorized
	}
	return *claims, nil
}

func (s *AuthService) newAccessToken(userID uuid.UUID) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.accessTTL.Seconds()), nil
}

// HTTPStatus maps service-layer sentinel errors onto response codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, uslugo_errors.ErrInvalidInput):
		return 400
	case errors.Is(err, uslugo_errors.ErrUnauthorized):
		return 401
	case errors.Is(err, uslugo_errors.ErrForbidden):
		return 403
	case errors.Is(err, uslugo_errors.ErrNotFound):
		return 404
	case errors.Is(err, uslugo_errors.ErrAlreadyExists):
		return 409
	case errors.Is(err, uslugo_errors.ErrRateLimited):
		return 429
	default:
		return 500
	}
}

func toUserInfo(u domain.User) UserInfo {
	info := UserInfo{
		ID:       u.ID.String(),
		FullName: u.FullName,
		Email:    u.Email,
	}
	if u.AvatarURL.Valid {
		info.Avatar = u.AvatarURL.String
	}
	return info
}
