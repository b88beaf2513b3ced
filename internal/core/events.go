package core

import "github.com/dkeye/Chat/internal/domain"

// Outbound realtime event types.
const (
	EventMessage = "message"
	EventKicked  = "kicked"
	EventBanned  = "banned"
	EventJoined  = "joined"
	EventLeft    = "left"
	EventError   = "error"
	EventPong    = "pong"
)

type MessageEvent struct {
	Type    string             `json:"type"`
	RoomID  domain.RoomID      `json:"roomId"`
	Message domain.ChatMessage `json:"message"`
}

// SnapshotEvent carries the room history a joining connection receives.
type SnapshotEvent struct {
	Type     string               `json:"type"`
	RoomID   domain.RoomID        `json:"roomId"`
	Messages []domain.ChatMessage `json:"messages"`
}

type ModerationEvent struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Reason string        `json:"reason"`
}

type MemberEvent struct {
	Type   string           `json:"type"`
	RoomID domain.RoomID    `json:"roomId"`
	User   *domain.Identity `json:"user,omitempty"`
}

type ErrorEvent struct {
	Type    string        `json:"type"`
	Code    string        `json:"error"`
	Request string        `json:"request,omitempty"`
	RoomID  domain.RoomID `json:"roomId,omitempty"`
}

func NewMessageEvent(msg domain.ChatMessage) MessageEvent {
	return MessageEvent{Type: EventMessage, RoomID: msg.RoomID, Message: msg}
}

func NewSnapshotEvent(roomID domain.RoomID, msgs []domain.ChatMessage) SnapshotEvent {
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	return SnapshotEvent{Type: EventMessage, RoomID: roomID, Messages: msgs}
}

func NewErrorEvent(request string, roomID domain.RoomID, err error) ErrorEvent {
	return ErrorEvent{Type: EventError, Code: domain.ErrorCode(err), Request: request, RoomID: roomID}
}
