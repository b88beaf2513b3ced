package storage

import (
	"time"

	"github.com/dkeye/Chat/internal/domain"
)

type userModel struct {
	ID           string `gorm:"primaryKey;type:text"`
	Username     string `gorm:"uniqueIndex;not null;type:text"`
	PasswordHash string `gorm:"not null;type:text"`
	Avatar       string `gorm:"type:text"`
	Role         string `gorm:"not null;type:text"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           domain.UserID(m.ID),
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Avatar:       m.Avatar,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

type roomModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	Name        string `gorm:"not null;type:text"`
	Description string `gorm:"type:text"`
	Avatar      string `gorm:"type:text"`
	OwnerID     string `gorm:"index;not null;type:text"`
	CreatedAt   time.Time
}

func (roomModel) TableName() string { return "rooms" }

func (m roomModel) toDomain() domain.Room {
	return domain.Room{
		ID:          domain.RoomID(m.ID),
		Name:        m.Name,
		Description: m.Description,
		Avatar:      m.Avatar,
		OwnerID:     domain.UserID(m.OwnerID),
		CreatedAt:   m.CreatedAt,
	}
}

type messageModel struct {
	ID        string `gorm:"primaryKey;type:text"`
	RoomID    string `gorm:"index;not null;type:text"`
	UserID    string `gorm:"not null;type:text"`
	Username  string `gorm:"type:text"`
	Text      string `gorm:"not null;type:text"`
	CreatedAt time.Time
}

func (messageModel) TableName() string { return "messages" }

func (m messageModel) toDomain() domain.ChatMessage {
	return domain.ChatMessage{
		ID:           domain.MessageID(m.ID),
		RoomID:       domain.RoomID(m.RoomID),
		SenderUserID: domain.UserID(m.UserID),
		SenderName:   m.Username,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}

type banModel struct {
	RoomID    string `gorm:"primaryKey;type:text"`
	UserID    string `gorm:"primaryKey;type:text"`
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}

func (banModel) TableName() string { return "room_bans" }

type refreshModel struct {
	ID         string `gorm:"primaryKey;type:text"`
	FamilyID   string `gorm:"index;not null;type:text"`
	UserID     string `gorm:"index;not null;type:text"`
	SecretHash string `gorm:"size:64;not null"`
	IssuedAt   time.Time
	ExpiresAt  time.Time `gorm:"index;not null"`
	Revoked    bool      `gorm:"not null;default:false"`
	ReplacedBy string    `gorm:"type:text"`
}

func (refreshModel) TableName() string { return "refresh_tokens" }

func (m refreshModel) toDomain() domain.RefreshToken {
	return domain.RefreshToken{
		ID:         m.ID,
		FamilyID:   m.FamilyID,
		UserID:     domain.UserID(m.UserID),
		SecretHash: m.SecretHash,
		IssuedAt:   m.IssuedAt,
		ExpiresAt:  m.ExpiresAt,
		Revoked:    m.Revoked,
		ReplacedBy: m.ReplacedBy,
	}
}
