package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm/clause"
)

// SaveBan is an upsert; banning twice keeps the newest reason.
func (s *Store) SaveBan(ctx context.Context, roomID domain.RoomID, userID domain.UserID, reason string) error {
	m := banModel{
		RoomID:    string(roomID),
		UserID:    string(userID),
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("save ban: %w", err)
	}
	return nil
}

func (s *Store) DeleteBan(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	err := s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", string(roomID), string(userID)).
		Delete(&banModel{}).Error
	if err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}
	return nil
}

func (s *Store) ListBans(ctx context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&banModel{}).
		Where("room_id = ?", string(roomID)).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	out := make([]domain.UserID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.UserID(id))
	}
	return out, nil
}
