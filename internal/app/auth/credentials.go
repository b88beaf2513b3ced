package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UserStore is the persistence the credential store needs.
type UserStore interface {
	// CreateUser fails with domain.ErrUsernameTaken on a duplicate username.
	CreateUser(ctx context.Context, u domain.User) error
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id domain.UserID) (domain.User, error)
}

// Credentials verifies username/password pairs and sources identities.
type Credentials struct {
	users  UserStore
	hasher *PasswordHasher
	// dummyHash keeps VerifyPassword timing similar for unknown users.
	dummyHash string
}

func NewCredentials(users UserStore, hasher *PasswordHasher) *Credentials {
	dummy, _ := hasher.Hash("dummy-password-for-timing")
	return &Credentials{users: users, hasher: hasher, dummyHash: dummy}
}

func (c *Credentials) SignUp(ctx context.Context, username, password, avatar string, isAdmin bool) (domain.Identity, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return domain.Identity{}, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return domain.Identity{}, err
	}
	hash, err := c.hasher.Hash(password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	role := domain.RoleMember
	if isAdmin {
		role = domain.RoleAdmin
	}
	u := domain.User{
		ID:           domain.UserID(uuid.NewString()),
		Username:     username,
		PasswordHash: hash,
		Avatar:       strings.TrimSpace(avatar),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return domain.Identity{}, err
		}
		return domain.Identity{}, fmt.Errorf("create user: %w", err)
	}
	log.Info().Str("module", "app.auth").Str("user", string(u.ID)).Str("role", string(role)).Msg("user signed up")
	return u.Identity(), nil
}

// VerifyPassword returns domain.ErrInvalidCredentials for both an unknown
// username and a wrong password.
func (c *Credentials) VerifyPassword(ctx context.Context, username, password string) (domain.Identity, error) {
	u, err := c.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.hasher.Verify(password, c.dummyHash)
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, fmt.Errorf("find user: %w", err)
	}
	if !c.hasher.Verify(password, u.PasswordHash) {
		return domain.Identity{}, domain.ErrInvalidCredentials
	}
	return u.Identity(), nil
}

func (c *Credentials) IdentityByID(ctx context.Context, id domain.UserID) (domain.Identity, error) {
	u, err := c.users.UserByID(ctx, id)
	if err != nil {
		return domain.Identity{}, err
	}
	return u.Identity(), nil
}
