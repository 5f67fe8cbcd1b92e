package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"uslugo/internal/domain"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageFixture(t *testing.T) (*MessageService, *memStore, domain.User, domain.User) {
	t.Helper()
	store := newMemStore()
	svc := NewMessageService(
		&memMessageRepo{store: store},
		&memConversationRepo{store: store},
		&memUserRepo{store: store},
	)
	alice := store.addUser("Alice Ivanova")
	bob := store.addUser("Bob Petrov")
	return svc, store, alice, bob
}

func seedMessage(store *memStore, sender, receiver uuid.UUID, content string, at time.Time) domain.Message {
	m := domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		Type:       domain.MessageTypeText,
		CreatedAt:  at,
	}
	repo := &memMessageRepo{store: store}
	_ = repo.Append(context.Background(), &m)
	return m
}

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		explicitType string
		wantKind     string
		wantContent  string
		wantErr      error
	}{
		{
			name:        "plain text defaults to text",
			content:     "hello",
			wantKind:    domain.MessageTypeText,
			wantContent: "hello",
		},
		{
			name:        "data uri detected as image",
			content:     "data:image/png;base64,AAAA",
			wantKind:    domain.MessageTypeImage,
			wantContent: "data:image/png;base64,AAAA",
		},
		{
			name:         "explicit type wins over content shape",
			content:      "data:image/png;base64,AAAA",
			explicitType: domain.MessageTypeText,
			wantKind:     domain.MessageTypeText,
			wantContent:  "data:image/png;base64,AAAA",
		},
		{
			name:         "bare image payload gets a data uri prefix",
			content:      "AAAA",
			explicitType: domain.MessageTypeImage,
			wantKind:     domain.MessageTypeImage,
			wantContent:  "data:image/jpeg;base64,AAAA",
		},
		{
			name:         "emoji type passes through",
			content:      "🔧",
			explicitType: domain.MessageTypeEmoji,
			wantKind:     domain.MessageTypeEmoji,
			wantContent:  "🔧",
		},
		{
			name:         "unknown type rejected",
			content:      "hello",
			explicitType: "video",
			wantErr:      uslugo_errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, content, err := ClassifyContent(tt.content, tt.explicitType)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestSendValidation(t *testing.T) {
	svc, _, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: bob.ID.String(), Content: "   "})
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput, "blank content")

	_, err = svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: "not-a-uuid", Content: "hi"})
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput, "malformed receiver id")

	_, err = svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: alice.ID.String(), Content: "hi"})
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput, "self-send")

	_, err = svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: uuid.NewString(), Content: "hi"})
	assert.ErrorIs(t, err, uslugo_errors.ErrNotFound, "unknown receiver")
}

func TestSendStoresAndIndexes(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: bob.ID.String(), Content: "hello bob"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.Equal(t, bob.ID, msg.ReceiverID)
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.False(t, msg.IsRead)

	convRepo := &memConversationRepo{store: store}
	conv, err := convRepo.GetByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, conv.LastMessageID)
}

func TestBothDirectionsShareOneConversation(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, alice.ID, SendMessageInput{ReceiverID: bob.ID.String(), Content: "hi"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, bob.ID, SendMessageInput{ReceiverID: alice.ID.String(), Content: "hi back"})
	require.NoError(t, err)

	assert.Len(t, store.conversations, 1)
}

func TestHistoryPagination(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedMessage(store, alice.ID, bob.ID, fmt.Sprintf("msg %d", i), base.Add(time.Duration(i)*time.Second))
	}

	// First page: the 20 most recent, oldest first within the page.
	page, total, err := svc.History(ctx, bob.ID, alice.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, page, 20)
	assert.Equal(t, "msg 5", page[0].Content)
	assert.Equal(t, "msg 24", page[19].Content)

	// Second page: the remaining 5 older messages.
	page, total, err = svc.History(ctx, bob.ID, alice.ID, 20, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, page, 5)
	assert.Equal(t, "msg 0", page[0].Content)
	assert.Equal(t, "msg 4", page[4].Content)

	// Past the end.
	page, total, err = svc.History(ctx, bob.ID, alice.ID, 100, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Empty(t, page)
}

func TestMarkReadIsOneDirectionalAndIdempotent(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	seedMessage(store, alice.ID, bob.ID, "one", base)
	seedMessage(store, alice.ID, bob.ID, "two", base.Add(time.Second))
	seedMessage(store, bob.ID, alice.ID, "reply", base.Add(2*time.Second))

	changed, err := svc.MarkRead(ctx, bob.ID, alice.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	// Bob's own reply to Alice stays unread for her.
	count, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Marking again finds nothing and still succeeds.
	changed, err = svc.MarkRead(ctx, bob.ID, alice.ID.String())
	require.NoError(t, err)
	assert.Zero(t, changed)

	_, err = svc.MarkRead(ctx, bob.ID, "not-a-uuid")
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput)
}

func TestUnreadCountAcrossConversations(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	carol := store.addUser("Carol Sidorova")
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	seedMessage(store, alice.ID, bob.ID, "from alice", base)
	seedMessage(store, carol.ID, bob.ID, "from carol 1", base.Add(time.Second))
	seedMessage(store, carol.ID, bob.ID, "from carol 2", base.Add(2*time.Second))

	count, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = svc.MarkRead(ctx, bob.ID, carol.ID.String())
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestConversationsInbox(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	carol := store.addUser("Carol Sidorova")
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	seedMessage(store, alice.ID, bob.ID, "old from alice", base)
	seedMessage(store, bob.ID, alice.ID, "reply to alice", base.Add(time.Second))
	last := seedMessage(store, carol.ID, bob.ID, "newest from carol", base.Add(2*time.Second))

	entries, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recently active conversation first.
	assert.Equal(t, carol.ID.String(), entries[0].OtherUserID)
	assert.Equal(t, "Carol Sidorova", entries[0].DisplayName)
	assert.Equal(t, last.ID, entries[0].LastMessage.ID)
	assert.EqualValues(t, 1, entries[0].UnreadCount)

	assert.Equal(t, alice.ID.String(), entries[1].OtherUserID)
	assert.Equal(t, "Alice Ivanova", entries[1].DisplayName)
	assert.EqualValues(t, 1, entries[1].UnreadCount)
}

func TestConversationsDeletedUserFallback(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	seedMessage(store, alice.ID, bob.ID, "hi", time.Now())
	userRepo := &memUserRepo{store: store}
	require.NoError(t, userRepo.Delete(ctx, alice.ID))

	entries, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown User", entries[0].DisplayName)
}

func TestConversationsOmitsUnresolvableLastMessage(t *testing.T) {
	svc, store, alice, bob := newMessageFixture(t)
	carol := store.addUser("Carol Sidorova")
	ctx := context.Background()

	base := time.Now().Add(-time.Minute)
	dropped := seedMessage(store, alice.ID, bob.ID, "soon gone", base)
	kept := seedMessage(store, carol.ID, bob.ID, "still here", base.Add(time.Second))

	// Drop the message the alice conversation points at, leaving a
	// dangling index entry behind.
	store.mu.Lock()
	for i, m := range store.messages {
		if m.ID == dropped.ID {
			store.messages = append(store.messages[:i], store.messages[i+1:]...)
			break
		}
	}
	store.mu.Unlock()

	entries, err := svc.Conversations(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, carol.ID.String(), entries[0].OtherUserID)
	assert.Equal(t, kept.ID, entries[0].LastMessage.ID)
}
