package repository

import (
	"context"

	"uslugo/internal/domain"

	"github.com/google/uuid"
)

// MessageRepository is the append-only message store. Append also
// maintains the conversation index row in the same transaction, so a
// send is acknowledged only once both writes are durable.
type MessageRepository interface {
	Append(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error)
	// ListBetween returns one page of messages exchanged between the two
	// users, newest first, plus the total number of messages in the pair.
	ListBetween(ctx context.Context, userA, userB uuid.UUID, skip, limit int) ([]domain.Message, int64, error)
	// MarkRead flips unread messages sent by fromUser to toUser and
	// reports how many rows changed.
	MarkRead(ctx context.Context, fromUser, toUser uuid.UUID) (int64, error)
	CountUnreadFor(ctx context.Context, user uuid.UUID) (int64, error)
	CountUnreadFrom(ctx context.Context, sender, receiver uuid.UUID) (int64, error)
}

// ConversationRepository reads the cached conversation index. Writes
// happen only through MessageRepository.Append.
type ConversationRepository interface {
	GetByPair(ctx context.Context, userA, userB uuid.UUID) (domain.Conversation, error)
	ListForUser(ctx context.Context, user uuid.UUID) ([]domain.Conversation, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, u domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceFilter narrows listing queries. Zero values mean "no filter".
type ServiceFilter struct {
	Category      string
	Subcategory   string
	CustomService string
	PriceType     string
	City          string
	MinPrice      *float64
	MaxPrice      *float64
}

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Service, error)
	GetManyByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Service, error)
	Update(ctx context.Context, s domain.Service) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ListAll(ctx context.Context) ([]domain.Service, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Service, error)
	Filter(ctx context.Context, f ServiceFilter) ([]domain.Service, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ListForUser(ctx context.Context, reviewedUserID uuid.UUID) ([]domain.Review, error)
}

type FavoriteRepository interface {
	ListServiceIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Exists(ctx context.Context, userID, serviceID uuid.UUID) (bool, error)
	Add(ctx context.Context, f *domain.Favorite) error
	Remove(ctx context.Context, userID, serviceID uuid.UUID) error
}
