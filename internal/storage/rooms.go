package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) CreateRoom(ctx context.Context, name, description, avatar string, ownerID domain.UserID) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > domain.MaxRoomNameLen {
		return domain.Room{}, domain.ErrRoomNameInvalid
	}
	if len([]rune(description)) > domain.MaxRoomDescriptionLen {
		return domain.Room{}, domain.ErrRoomNameInvalid
	}
	if avatar == "" {
		avatar = domain.DefaultRoomAvatar
	}
	m := roomModel{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Avatar:      avatar,
		OwnerID:     string(ownerID),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var ms []roomModel
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	out := make([]domain.Room, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.toDomain())
	}
	return out, nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	var m roomModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("find room: %w", err)
	}
	return m.toDomain(), nil
}
