package ws

import (
	"encoding/json"

	"uslugo/internal/transport/httpdto"
)

// Event types accepted from clients.
const (
	EventSendMessage = "send_message"
	EventMarkRead    = "mark_read"
)

// Event types pushed to clients.
const (
	EventAck        = "ack"
	EventNewMessage = "new_message"
)

// Envelope is the wire frame in both directions. AckID is echoed back
// verbatim so clients can correlate acks with their requests.
type Envelope struct {
	Type  string          `json:"type"`
	AckID string          `json:"ack_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
}

type MarkReadPayload struct {
	ConversationWith string `json:"conversationWith"`
}

type Ack struct {
	Status  string                   `json:"status"`
	Message *httpdto.MessageResponse `json:"message,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// NewMessagePush is delivered to the receiver's connection when a
// message addressed to them is stored while they are online.
type NewMessagePush struct {
	Message httpdto.MessageResponse `json:"message"`
	Sender  PushSender              `json:"sender"`
}

type PushSender struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

func marshalEnvelope(eventType, ackID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, AckID: ackID, Data: data})
}
