package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

// memStore backs the in-memory repository fakes used by the service
// tests. Messages and the conversation index share one store so Append
// keeps the same coupled semantics as the real transaction.
type memStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]domain.User
	messages      []domain.Message
	conversations map[[2]uuid.UUID]domain.Conversation
	services      map[uuid.UUID]domain.Service
	reviews       []domain.Review
	favorites     map[[2]uuid.UUID]struct{}
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]domain.User),
		conversations: make(map[[2]uuid.UUID]domain.Conversation),
		services:      make(map[uuid.UUID]domain.Service),
		favorites:     make(map[[2]uuid.UUID]struct{}),
	}
}

func (s *memStore) addUser(fullName string) domain.User {
	u := domain.User{
		ID:        uuid.New(),
		FullName:  fullName,
		Email:     fullName + "@example.com",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u
}

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return uslugo_errors.ErrAlreadyExists
		}
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return domain.User{}, uslugo_errors.ErrNotFound
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, uslugo_errors.ErrNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[u.ID]; !ok {
		return uslugo_errors.ErrNotFound
	}
	r.store.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	return nil
}

type memMessageRepo struct{ store *memStore }

func (r *memMessageRepo) Append(ctx context.Context, m *domain.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.messages = append(r.store.messages, *m)

	a, b := domain.PairKey(m.SenderID, m.ReceiverID)
	key := [2]uuid.UUID{a, b}
	conv, ok := r.store.conversations[key]
	if !ok {
		r.store.conversations[key] = domain.Conversation{
			ID:            uuid.New(),
			ParticipantA:  a,
			ParticipantB:  b,
			LastMessageID: m.ID,
			CreatedAt:     m.CreatedAt,
			UpdatedAt:     m.CreatedAt,
		}
		return nil
	}
	if !conv.UpdatedAt.After(m.CreatedAt) {
		conv.LastMessageID = m.ID
		conv.UpdatedAt = m.CreatedAt
		r.store.conversations[key] = conv
	}
	return nil
}

func (r *memMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Message{}, uslugo_errors.ErrNotFound
}

func (r *memMessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID, skip, limit int) ([]domain.Message, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var thread []domain.Message
	for _, m := range r.store.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			thread = append(thread, m)
		}
	}
	sort.Slice(thread, func(i, j int) bool {
		return thread[i].CreatedAt.After(thread[j].CreatedAt)
	})

	total := int64(len(thread))
	if skip >= len(thread) {
		return nil, total, nil
	}
	thread = thread[skip:]
	if limit > 0 && limit < len(thread) {
		thread = thread[:limit]
	}
	return thread, total, nil
}

func (r *memMessageRepo) MarkRead(ctx context.Context, fromUser, toUser uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var changed int64
	for i := range r.store.messages {
		m := &r.store.messages[i]
		if m.SenderID == fromUser && m.ReceiverID == toUser && !m.IsRead {
			m.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *memMessageRepo) CountUnreadFor(ctx context.Context, user uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, m := range r.store.messages {
		if m.ReceiverID == user && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memMessageRepo) CountUnreadFrom(ctx context.Context, sender, receiver uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, m := range r.store.messages {
		if m.SenderID == sender && m.ReceiverID == receiver && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type memConversationRepo struct{ store *memStore }

func (r *memConversationRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (domain.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, b := domain.PairKey(userA, userB)
	conv, ok := r.store.conversations[[2]uuid.UUID{a, b}]
	if !ok {
		return domain.Conversation{}, uslugo_errors.ErrNotFound
	}
	return conv, nil
}

func (r *memConversationRepo) ListForUser(ctx context.Context, user uuid.UUID) ([]domain.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Conversation
	for _, conv := range r.store.conversations {
		if conv.ParticipantA == user || conv.ParticipantB == user {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

var (
	_ repository.UserRepository         = (*memUserRepo)(nil)
	_ repository.MessageRepository      = (*memMessageRepo)(nil)
	_ repository.ConversationRepository = (*memConversationRepo)(nil)
)
