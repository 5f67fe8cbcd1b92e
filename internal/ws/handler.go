package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"uslugo/internal/domain"
	"uslugo/internal/redis"
	"uslugo/internal/repository"
	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"
	uslugo_errors "uslugo/pkg/errors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler owns the realtime channel: it authenticates and upgrades
// connections, dispatches inbound events through the message service
// and pushes stored messages to online receivers.
type Handler struct {
	auth     *services.AuthService
	messages *services.MessageService
	users    repository.UserRepository
	registry *Registry
	lastSeen *redis.LastSeenStore
	limiter  *redis.RateLimiter
	logger   *zap.Logger
}

func NewHandler(
	auth *services.AuthService,
	messages *services.MessageService,
	users repository.UserRepository,
	registry *Registry,
	lastSeen *redis.LastSeenStore,
	limiter *redis.RateLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		messages: messages,
		users:    users,
		registry: registry,
		lastSeen: lastSeen,
		limiter:  limiter,
		logger:   logger,
	}
}

// Connect handles GET /ws?token=<access token>. The credential is
// verified before the upgrade so an invalid token gets a plain 401
// instead of a half-open socket.
func (h *Handler) Connect(c *gin.Context) {
	claims, err := h.auth.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid or missing token", "UNAUTHORIZED"))
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid or missing token", "UNAUTHORIZED"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Key the registry and presence store by the canonical uuid form,
	// never the raw claim string, so unregister and push lookups agree.
	userKey := userID.String()
	client := NewClient(userID, conn, h.logger)
	if prev := h.registry.Register(userKey, client); prev != nil {
		prev.Close()
	}
	if h.lastSeen != nil {
		if err := h.lastSeen.SetOnline(c.Request.Context(), userKey); err != nil {
			h.logger.Warn("presence set online failed",
				zap.String("user_id", userKey), zap.Error(err))
		}
	}
	h.logger.Info("websocket connected",
		zap.String("user_id", userKey),
		zap.String("client_id", client.ID.String()))

	go client.WriteLoop()
	go h.readLoop(client)
}

func (h *Handler) readLoop(client *Client) {
	ctx := context.Background()
	userKey := client.UserID.String()

	defer func() {
		// Guarded: a reconnect may already own the registry slot.
		h.registry.Unregister(userKey, client)
		if h.lastSeen != nil {
			if err := h.lastSeen.SetOffline(ctx, userKey); err != nil {
				h.logger.Warn("presence set offline failed",
					zap.String("user_id", userKey), zap.Error(err))
			}
		}
		client.Close()
		h.logger.Info("websocket disconnected",
			zap.String("user_id", userKey),
			zap.String("client_id", client.ID.String()))
	}()

	client.Conn.SetReadLimit(maxFrameSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if h.lastSeen != nil {
			if err := h.lastSeen.Heartbeat(ctx, userKey); err != nil {
				h.logger.Debug("presence heartbeat failed", zap.Error(err))
			}
		}
		return nil
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("unexpected close", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendError(client, "", "malformed frame")
			continue
		}

		switch env.Type {
		case EventSendMessage:
			h.handleSendMessage(ctx, client, env)
		case EventMarkRead:
			h.handleMarkRead(ctx, client, env)
		default:
			h.sendError(client, env.AckID, "unknown event type "+env.Type)
		}
	}
}

func (h *Handler) handleSendMessage(ctx context.Context, client *Client, env Envelope) {
	var payload SendMessagePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.sendError(client, env.AckID, "malformed send_message payload")
		return
	}

	if h.limiter != nil {
		res, err := h.limiter.AllowMessage(ctx, client.UserID.String())
		if err != nil {
			h.logger.Warn("rate limit check failed", zap.Error(err))
		} else if !res.Allowed {
			h.sendError(client, env.AckID, "message rate limit exceeded")
			return
		}
	}

	msg, err := h.messages.Send(ctx, client.UserID, services.SendMessageInput{
		ReceiverID: payload.ReceiverID,
		Content:    payload.Content,
		Type:       payload.Type,
	})
	if err != nil {
		h.sendError(client, env.AckID, sendErrorText(err))
		return
	}

	resp := httpdto.NewMessageResponse(msg)
	h.sendAck(client, env.AckID, Ack{Status: "ok", Message: &resp})
	h.pushToReceiver(ctx, msg)
}

func (h *Handler) handleMarkRead(ctx context.Context, client *Client, env Envelope) {
	var payload MarkReadPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.sendError(client, env.AckID, "malformed mark_read payload")
		return
	}

	if _, err := h.messages.MarkRead(ctx, client.UserID, payload.ConversationWith); err != nil {
		h.sendError(client, env.AckID, sendErrorText(err))
		return
	}
	h.sendAck(client, env.AckID, Ack{Status: "ok"})
}

// pushToReceiver delivers a stored message to the receiver's live
// connection if one exists. Delivery is best effort: an offline or slow
// receiver simply reads the thread from the store later.
func (h *Handler) pushToReceiver(ctx context.Context, msg domain.Message) {
	receiver, ok := h.registry.Lookup(msg.ReceiverID.String())
	if !ok {
		return
	}

	push := NewMessagePush{
		Message: httpdto.NewMessageResponse(msg),
		Sender:  PushSender{ID: msg.SenderID.String(), DisplayName: "Unknown User"},
	}
	if sender, err := h.users.GetByID(ctx, msg.SenderID); err == nil {
		push.Sender.DisplayName = sender.FullName
		if sender.AvatarURL.Valid {
			push.Sender.Avatar = sender.AvatarURL.String
		}
	}

	frame, err := marshalEnvelope(EventNewMessage, "", push)
	if err != nil {
		h.logger.Error("marshal push failed", zap.Error(err))
		return
	}
	receiver.SendMessage(frame)
}

func (h *Handler) sendAck(client *Client, ackID string, ack Ack) {
	frame, err := marshalEnvelope(EventAck, ackID, ack)
	if err != nil {
		h.logger.Error("marshal ack failed", zap.Error(err))
		return
	}
	client.SendMessage(frame)
}

func (h *Handler) sendError(client *Client, ackID, text string) {
	h.sendAck(client, ackID, Ack{Status: "error", Error: text})
}

func sendErrorText(err error) string {
	switch {
	case errors.Is(err, uslugo_errors.ErrInvalidInput):
		return "invalid message"
	case errors.Is(err, uslugo_errors.ErrNotFound):
		return "receiver not found"
	case errors.Is(err, uslugo_errors.ErrRateLimited):
		return "rate limit exceeded"
	default:
		return "internal error"
	}
}
