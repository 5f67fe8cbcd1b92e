package repository

import (
	"context"
	"errors"

	"uslugo/internal/domain"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Append inserts the message and upserts the conversation index row in
// one transaction. The caller never sees a message without the index
// write having been attempted, and the index update is guarded so a
// racing newer message cannot be overwritten by an older one.
func (r *PostgresMessageRepository) Append(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return upsertConversation(tx, m)
	})
}

// upsertConversation points the pair's conversation row at the given
// message. Last-writer-wins by message timestamp: if a concurrent send
// in the same pair already advanced updated_at past this message's
// creation time, the row is left alone.
func upsertConversation(tx *gorm.DB, m *domain.Message) error {
	a, b := domain.PairKey(m.SenderID, m.ReceiverID)

	res := tx.Model(&domain.Conversation{}).
		Where("participant_a = ? AND participant_b = ? AND updated_at <= ?", a, b, m.CreatedAt).
		Updates(map[string]interface{}{
			"last_message_id": m.ID,
			"updated_at":      m.CreatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&domain.Conversation{}).
		Where("participant_a = ? AND participant_b = ?", a, b).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		// A newer message already owns the row.
		return nil
	}

	conv := &domain.Conversation{
		ID:            uuid.New(),
		ParticipantA:  a,
		ParticipantB:  b,
		LastMessageID: m.ID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.CreatedAt,
	}
	err := tx.Create(conv).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the creation race; retry as a guarded update.
		return tx.Model(&domain.Conversation{}).
			Where("participant_a = ? AND participant_b = ? AND updated_at <= ?", a, b, m.CreatedAt).
			Updates(map[string]interface{}{
				"last_message_id": m.ID,
				"updated_at":      m.CreatedAt,
			}).Error
	}
	return err
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, uslugo_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListBetween(ctx context.Context, userA, userB uuid.UUID, skip, limit int) ([]domain.Message, int64, error) {
	var messages []domain.Message
	var total int64

	pair := "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

	if err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where(pair, userA, userB, userB, userA).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where(pair, userA, userB, userB, userA).
		Order("created_at DESC, id DESC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (r *PostgresMessageRepository) MarkRead(ctx context.Context, fromUser, toUser uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", fromUser, toUser, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *PostgresMessageRepository) CountUnreadFor(ctx context.Context, user uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("receiver_id = ? AND is_read = ?", user, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresMessageRepository) CountUnreadFrom(ctx context.Context, sender, receiver uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", sender, receiver, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
