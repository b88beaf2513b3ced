package domain

import "time"

type MessageID string

const MaxMessageLen = 2000

// ChatMessage is immutable after the router creates it.
type ChatMessage struct {
	ID           MessageID `json:"id"`
	RoomID       RoomID    `json:"roomId"`
	SenderUserID UserID    `json:"userId"`
	SenderName   string    `json:"username"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is the server-side record of an issued refresh token.
// Tokens issued by rotating one another share a FamilyID.
type RefreshToken struct {
	ID         string
	FamilyID   string
	UserID     UserID
	SecretHash string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy string
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
