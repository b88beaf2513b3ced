package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm"
)

// CreateUser inserts u. The existence check and the insert share a
// transaction; the unique index catches whatever slips past it.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	m := userModel{
		ID:           string(u.ID),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&userModel{}).Where("username = ?", u.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrUsernameTaken
		}
		return tx.Create(&m).Error
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrUsernameTaken
	default:
		return fmt.Errorf("create user: %w", err)
	}
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	var m userModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return m.toDomain(), nil
}
