package core

import (
	"github.com/dkeye/Chat/internal/domain"
)

// PublishResult reports delivery stats/backpressure to the router.
type PublishResult struct {
	SendTo  int
	Dropped []*Connection
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ConnectionID ConnectionID  `json:"connectionId"`
	UserID       domain.UserID `json:"userId"`
	Username     string        `json:"username"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the ban list but never touches transport
// resources.
//
// Do runs fn while holding the room's serialization lock. Every method other
// than Room and Do must only be called from inside Do, which is what makes
// join/leave/kick/ban/broadcast a single total order per room.
type RoomService interface {
	Room() domain.Room
	Do(fn func(RoomService) error) error

	MemberCount() int
	MembersSnapshot() []MemberDTO
	HasMember(id ConnectionID) bool
	IsBanned(user domain.UserID) bool

	AddMember(c *Connection) error
	RemoveMember(id ConnectionID) (*Connection, bool)
	RemoveUser(user domain.UserID) []*Connection
	Ban(user domain.UserID)
	Unban(user domain.UserID) bool
	Broadcast(from ConnectionID, data Frame) PublishResult
}

type RoomInfo struct {
	domain.Room
	MemberCount int `json:"client_count"`
}
