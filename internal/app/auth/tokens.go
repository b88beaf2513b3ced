// Package auth owns credential verification, the access/refresh token
// lifecycle and the realtime connection handshake.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RefreshStore persists refresh token records.
type RefreshStore interface {
	CreateRefresh(ctx context.Context, t domain.RefreshToken) error
	// GetRefresh fails with domain.ErrRefreshNotFound.
	GetRefresh(ctx context.Context, id string) (domain.RefreshToken, error)
	// ConsumeRefresh revokes id and records its replacement in one
	// compare-and-set; domain.ErrRefreshConsumed if it was already revoked.
	ConsumeRefresh(ctx context.Context, id, replacedBy string) error
	RevokeRefresh(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) error
}

// IdentitySource resolves the identity a refresh token was issued to.
type IdentitySource interface {
	IdentityByID(ctx context.Context, id domain.UserID) (domain.Identity, error)
}

type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// AccessToken is opaque to everything outside this package; only
// VerifyAccessToken decides whether it is valid.
type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type TokenPair struct {
	Access           AccessToken
	Refresh          string
	RefreshExpiresAt time.Time
}

type accessClaims struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	cfg        TokenConfig
	refresh    RefreshStore
	identities IdentitySource
	now        func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg TokenConfig, refresh RefreshStore, identities IdentitySource, opts ...TokenOption) *TokenService {
	s := &TokenService{
		cfg:        cfg,
		refresh:    refresh,
		identities: identities,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *TokenService) IssueAccessToken(identity domain.Identity) (AccessToken, error) {
	if identity.IsZero() || !identity.Role.Valid() {
		return AccessToken{}, errors.New("issue access token: incomplete identity")
	}
	now := s.now()
	exp := now.Add(s.cfg.AccessTTL)
	claims := accessClaims{
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   string(identity.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return AccessToken{Token: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyAccessToken has no side effects. Every failure is reported as
// domain.ErrAuthInvalid.
func (s *TokenService) VerifyAccessToken(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	var claims accessClaims
	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	}
	if !t.Valid || claims.ExpiresAt == nil || !s.now().Before(claims.ExpiresAt.Time) {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	id := domain.Identity{
		UserID:   domain.UserID(claims.Subject),
		Username: claims.Username,
		Role:     claims.Role,
	}
	if id.IsZero() || !id.Role.Valid() {
		return domain.Identity{}, domain.ErrAuthInvalid
	}
	return id, nil
}

// IssueTokens starts a new refresh family for a freshly verified identity.
func (s *TokenService) IssueTokens(ctx context.Context, identity domain.Identity) (TokenPair, error) {
	access, err := s.IssueAccessToken(identity)
	if err != nil {
		return TokenPair{}, err
	}
	raw, rec, err := s.newRefresh(identity.UserID, "")
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refresh.CreateRefresh(ctx, rec); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: raw, RefreshExpiresAt: rec.ExpiresAt}, nil
}

// RotateRefresh consumes a refresh token and returns a new pair. Any failure
// is domain.ErrAuthExpiredRefresh; presenting a consumed token revokes the
// whole family.
func (s *TokenService) RotateRefresh(ctx context.Context, raw string) (TokenPair, error) {
	rec, err := s.lookup(ctx, raw)
	if err != nil {
		return TokenPair{}, err
	}
	if rec.Revoked {
		s.reuseDetected(ctx, rec)
		return TokenPair{}, domain.ErrAuthExpiredRefresh
	}
	if rec.Expired(s.now()) {
		return TokenPair{}, domain.ErrAuthExpiredRefresh
	}
	identity, err := s.identities.IdentityByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.refresh.RevokeFamily(ctx, rec.FamilyID)
			return TokenPair{}, domain.ErrAuthExpiredRefresh
		}
		return TokenPair{}, fmt.Errorf("resolve identity: %w", err)
	}

	nextRaw, next, err := s.newRefresh(rec.UserID, rec.FamilyID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.refresh.CreateRefresh(ctx, next); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	if err := s.refresh.ConsumeRefresh(ctx, rec.ID, next.ID); err != nil {
		if errors.Is(err, domain.ErrRefreshConsumed) {
			// Lost a race against another presentation of the same token.
			s.reuseDetected(ctx, rec)
			return TokenPair{}, domain.ErrAuthExpiredRefresh
		}
		return TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}

	access, err := s.IssueAccessToken(identity)
	if err != nil {
		return TokenPair{}, err
	}
	log.Debug().Str("module", "app.auth").Str("user", string(rec.UserID)).Str("family", rec.FamilyID).Msg("refresh token rotated")
	return TokenPair{Access: access, Refresh: nextRaw, RefreshExpiresAt: next.ExpiresAt}, nil
}

// Revoke is used on logout. Unknown or already revoked tokens are ignored.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	rec, err := s.lookup(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpiredRefresh) {
			return nil
		}
		return err
	}
	if rec.Revoked {
		return nil
	}
	if err := s.refresh.RevokeRefresh(ctx, rec.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) lookup(ctx context.Context, raw string) (domain.RefreshToken, error) {
	id, secret, ok := strings.Cut(raw, ".")
	if !ok || id == "" || secret == "" {
		return domain.RefreshToken{}, domain.ErrAuthExpiredRefresh
	}
	rec, err := s.refresh.GetRefresh(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshNotFound) {
			return domain.RefreshToken{}, domain.ErrAuthExpiredRefresh
		}
		return domain.RefreshToken{}, fmt.Errorf("load refresh token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(hashSecret(secret)), []byte(rec.SecretHash)) != 1 {
		return domain.RefreshToken{}, domain.ErrAuthExpiredRefresh
	}
	return rec, nil
}

func (s *TokenService) reuseDetected(ctx context.Context, rec domain.RefreshToken) {
	log.Warn().
		Str("module", "app.auth").
		Str("user", string(rec.UserID)).
		Str("family", rec.FamilyID).
		Str("token", rec.ID).
		Msg("refresh token reuse detected, revoking family")
	if err := s.refresh.RevokeFamily(ctx, rec.FamilyID); err != nil {
		log.Error().Err(err).Str("module", "app.auth").Str("family", rec.FamilyID).Msg("revoke family")
	}
}

func (s *TokenService) newRefresh(user domain.UserID, family string) (string, domain.RefreshToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.RefreshToken{}, fmt.Errorf("generate refresh secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(buf)
	id := uuid.NewString()
	if family == "" {
		family = id
	}
	now := s.now()
	rec := domain.RefreshToken{
		ID:         id,
		FamilyID:   family,
		UserID:     user,
		SecretHash: hashSecret(secret),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.cfg.RefreshTTL),
	}
	return id + "." + secret, rec, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
