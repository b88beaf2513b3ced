package domain

import "time"

type RoomID string

const (
	MaxRoomNameLen        = 36
	MaxRoomDescriptionLen = 256
	DefaultRoomAvatar     = "https://api.dicebear.com/7.x/shapes/svg?seed=room"
)

// Room is the persisted room record. Runtime membership and the ban list
// live in core.RoomService.
type Room struct {
	ID          RoomID    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Avatar      string    `json:"avatar"`
	OwnerID     UserID    `json:"ownerId"`
	CreatedAt   time.Time `json:"created_at"`
}
