package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/repository"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
)

const imageDataPrefix = "data:image/"

// MessageService owns the messaging core: the append-only message
// store, the cached conversation index and read tracking. Both the
// REST handlers and the websocket event loop go through it, so the
// two paths share one send sequence.
type MessageService struct {
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
	}
}

type SendMessageInput struct {
	ReceiverID string
	Content    string
	Type       string
}

// ConversationEntry is one inbox row: the other participant's display
// data, the cached last message and the unread count from them. The
// unread count is recomputed per call, never cached.
type ConversationEntry struct {
	OtherUserID string
	DisplayName string
	Avatar      string
	LastMessage domain.Message
	UnreadCount int64
}

// ClassifyContent resolves the content kind. Precedence: an explicit
// type wins; otherwise a payload with an embedded-image prefix is an
// image; everything else is text. Image content missing the data URI
// prefix is normalized to one, matching what clients render.
func ClassifyContent(content, explicitType string) (kind, normalized string, err error) {
	kind = explicitType
	if kind == "" {
		if strings.HasPrefix(content, imageDataPrefix) {
			kind = domain.MessageTypeImage
		} else {
			kind = domain.MessageTypeText
		}
	}

	switch kind {
	case domain.MessageTypeText, domain.MessageTypeEmoji:
	case domain.MessageTypeImage:
		if !strings.HasPrefix(content, imageDataPrefix) {
			content = "data:image/jpeg;base64," + content
		}
	default:
		return "", "", uslugo_errors.ErrInvalidInput
	}
	return kind, content, nil
}

// Send validates, persists and indexes one directed message. The
// repository performs the message insert and conversation upsert as a
// single transaction, so the returned message is only ever the fully
// committed form.
func (s *MessageService) Send(ctx context.Context, senderID uuid.UUID, in SendMessageInput) (domain.Message, error) {
	if strings.TrimSpace(in.Content) == "" || in.ReceiverID == "" {
		return domain.Message{}, uslugo_errors.ErrInvalidInput
	}

	receiverID, err := uuid.Parse(in.ReceiverID)
	if err != nil {
		return domain.Message{}, uslugo_errors.ErrInvalidInput
	}
	if receiverID == senderID {
		return domain.Message{}, uslugo_errors.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, uslugo_errors.ErrNotFound) {
			return domain.Message{}, uslugo_errors.ErrNotFound
		}
		return domain.Message{}, err
	}

	kind, content, err := ClassifyContent(in.Content, in.Type)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Type:       kind,
		IsRead:     false,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messageRepo.Append(ctx, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// History returns one page of the two users' thread in chronological
// order plus the total thread length. Page 0 holds the most recent
// messages; clients page backward by increasing skip.
func (s *MessageService) History(ctx context.Context, userID, otherID uuid.UUID, skip, limit int) ([]domain.Message, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	messages, total, err := s.messageRepo.ListBetween(ctx, userID, otherID, skip, limit)
	if err != nil {
		return nil, 0, err
	}

	// The repository pages newest-first; flip the page so callers see
	// oldest-first within it.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

// MarkRead flips every unread message flowing from conversationWith
// into userID. Idempotent: a second call changes nothing.
func (s *MessageService) MarkRead(ctx context.Context, userID uuid.UUID, conversationWith string) (int64, error) {
	if conversationWith == "" {
		return 0, uslugo_errors.ErrInvalidInput
	}
	otherID, err := uuid.Parse(conversationWith)
	if err != nil {
		return 0, uslugo_errors.ErrInvalidInput
	}
	return s.messageRepo.MarkRead(ctx, otherID, userID)
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.messageRepo.CountUnreadFor(ctx, userID)
}

// Conversations builds the inbox view from the conversation index,
// most recently active first. Entries whose cached last message can no
// longer be resolved are dropped rather than failing the listing.
func (s *MessageService) Conversations(ctx context.Context, userID uuid.UUID) ([]ConversationEntry, error) {
	conversations, err := s.conversationRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]ConversationEntry, 0, len(conversations))
	for _, conv := range conversations {
		last, err := s.messageRepo.GetByID(ctx, conv.LastMessageID)
		if err != nil {
			if errors.Is(err, uslugo_errors.ErrNotFound) {
				continue
			}
			return nil, err
		}

		otherID := conv.OtherParticipant(userID)
		entry := ConversationEntry{
			OtherUserID: otherID.String(),
			DisplayName: "Unknown User",
			LastMessage: last,
		}

		if other, err := s.userRepo.GetByID(ctx, otherID); err == nil {
			entry.DisplayName = other.FullName
			if other.AvatarURL.Valid {
				entry.Avatar = other.AvatarURL.String
			}
		} else if !errors.Is(err, uslugo_errors.ErrNotFound) {
			return nil, err
		}

		unread, err := s.messageRepo.CountUnreadFrom(ctx, otherID, userID)
		if err != nil {
			return nil, err
		}
		entry.UnreadCount = unread

		entries = append(entries, entry)
	}
	return entries, nil
}
