package core

import (
	"context"

	"github.com/dkeye/Chat/internal/domain"
)

// MessageStore persists chat history. Appends happen inside the room's
// serialized boundary, so implementations must not call back into rooms.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg domain.ChatMessage) error
	// LoadRecentMessages returns at most limit messages, oldest first.
	LoadRecentMessages(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error)
}

type RoomStore interface {
	CreateRoom(ctx context.Context, name, description, avatar string, ownerID domain.UserID) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
}

type BanStore interface {
	SaveBan(ctx context.Context, roomID domain.RoomID, userID domain.UserID, reason string) error
	DeleteBan(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error
	ListBans(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error)
}
