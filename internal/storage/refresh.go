package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Chat/internal/domain"
	"gorm.io/gorm"
)

func (s *Store) CreateRefresh(ctx context.Context, t domain.RefreshToken) error {
	m := refreshModel{
		ID:         t.ID,
		FamilyID:   t.FamilyID,
		UserID:     string(t.UserID),
		SecretHash: t.SecretHash,
		IssuedAt:   t.IssuedAt,
		ExpiresAt:  t.ExpiresAt,
		Revoked:    t.Revoked,
		ReplacedBy: t.ReplacedBy,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetRefresh(ctx context.Context, id string) (domain.RefreshToken, error) {
	var m refreshModel
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RefreshToken{}, domain.ErrRefreshNotFound
		}
		return domain.RefreshToken{}, fmt.Errorf("find refresh token: %w", err)
	}
	return m.toDomain(), nil
}

// ConsumeRefresh flips revoked only if it is still false; zero rows
// affected means another rotation got there first.
func (s *Store) ConsumeRefresh(ctx context.Context, id, replacedBy string) error {
	res := s.db.WithContext(ctx).Model(&refreshModel{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]any{"revoked": true, "replaced_by": replacedBy})
	if res.Error != nil {
		return fmt.Errorf("consume refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRefreshConsumed
	}
	return nil
}

func (s *Store) RevokeRefresh(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&refreshModel{}).
		Where("id = ?", id).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *Store) RevokeFamily(ctx context.Context, familyID string) error {
	err := s.db.WithContext(ctx).Model(&refreshModel{}).
		Where("family_id = ?", familyID).
		Update("revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoke refresh family: %w", err)
	}
	return nil
}
