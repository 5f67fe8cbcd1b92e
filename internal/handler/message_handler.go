package handler

import (
	"net/http"
	"strconv"

	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessageHandler exposes the message store over REST: thread history,
// the inbox, unread counts, sending and read marking.
type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Conversations handles GET /api/messages/conversations.
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	entries, err := h.service.Conversations(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]httpdto.ConversationResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, httpdto.NewConversationResponse(e))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(out))
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UnreadCountResponse{UnreadCount: count}))
}

// History handles GET /api/messages/:userId?skip=&limit=. The page is
// returned oldest first so clients can append it directly.
func (h *MessageHandler) History(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user id", "INVALID_REQUEST"))
		return
	}

	skip := parseQueryInt(c, "skip", 0)
	limit := parseQueryInt(c, "limit", 20)

	messages, total, err := h.service.History(c.Request.Context(), userID, otherID, skip, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.NewMessagesPage(messages, total)))
}

// Send handles POST /api/messages. Delivery to an online receiver is
// the realtime channel's job; this path only stores and indexes.
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), userID, services.SendMessageInput{
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Type:       req.Type,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.NewMessageResponse(msg)))
}

// MarkRead handles POST /api/messages/markRead. Idempotent: marking an
// already-read thread succeeds with nothing to do.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if _, err := h.service.MarkRead(c.Request.Context(), userID, req.ConversationWith); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.MarkReadResponse{Success: true}))
}

func parseQueryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
