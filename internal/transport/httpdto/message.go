package httpdto

import (
	"time"

	"uslugo/internal/domain"
	"uslugo/internal/services"
)

type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
}

type MarkReadRequest struct {
	ConversationWith string `json:"conversationWith"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewMessageResponse(m domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID.String(),
		Sender:    m.SenderID.String(),
		Receiver:  m.ReceiverID.String(),
		Content:   m.Content,
		Type:      m.Type,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

type MessagesPage struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}

func NewMessagesPage(messages []domain.Message, total int64) MessagesPage {
	page := MessagesPage{
		Messages: make([]MessageResponse, 0, len(messages)),
		Total:    total,
	}
	for _, m := range messages {
		page.Messages = append(page.Messages, NewMessageResponse(m))
	}
	return page
}

type ConversationResponse struct {
	OtherUserID string           `json:"otherUserId"`
	DisplayName string           `json:"displayName"`
	Avatar      string           `json:"avatar,omitempty"`
	LastMessage *MessageResponse `json:"lastMessage"`
	UnreadCount int64            `json:"unreadCount"`
}

func NewConversationResponse(entry services.ConversationEntry) ConversationResponse {
	last := NewMessageResponse(entry.LastMessage)
	return ConversationResponse{
		OtherUserID: entry.OtherUserID,
		DisplayName: entry.DisplayName,
		Avatar:      entry.Avatar,
		LastMessage: &last,
		UnreadCount: entry.UnreadCount,
	}
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

type MarkReadResponse struct {
	Success bool `json:"success"`
}
