package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/dkeye/Chat/internal/domain"
)

func (s *Store) AppendMessage(ctx context.Context, msg domain.ChatMessage) error {
	m := messageModel{
		ID:        string(msg.ID),
		RoomID:    string(msg.RoomID),
		UserID:    string(msg.SenderUserID),
		Username:  msg.SenderName,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// LoadRecentMessages returns the newest limit messages of the room, oldest
// first. Insertion order (rowid) breaks timestamp ties.
func (s *Store) LoadRecentMessages(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		return []domain.ChatMessage{}, nil
	}
	var ms []messageModel
	err := s.db.WithContext(ctx).
		Where("room_id = ?", string(roomID)).
		Order("rowid DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	slices.Reverse(ms)
	out := make([]domain.ChatMessage, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.toDomain())
	}
	return out, nil
}
