package auth

import (
	"context"
	"sync"

	"github.com/dkeye/Chat/internal/domain"
)

type memRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]domain.RefreshToken
}

func newMemRefreshStore() *memRefreshStore {
	return &memRefreshStore{tokens: make(map[string]domain.RefreshToken)}
}

func (m *memRefreshStore) CreateRefresh(_ context.Context, t domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID] = t
	return nil
}

func (m *memRefreshStore) GetRefresh(_ context.Context, id string) (domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok {
		return domain.RefreshToken{}, domain.ErrRefreshNotFound
	}
	return t, nil
}

func (m *memRefreshStore) ConsumeRefresh(_ context.Context, id, replacedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.Revoked {
		return domain.ErrRefreshConsumed
	}
	t.Revoked = true
	t.ReplacedBy = replacedBy
	m.tokens[id] = t
	return nil
}

func (m *memRefreshStore) RevokeRefresh(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[id]; ok {
		t.Revoked = true
		m.tokens[id] = t
	}
	return nil
}

func (m *memRefreshStore) RevokeFamily(_ context.Context, familyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tokens {
		if t.FamilyID == familyID {
			t.Revoked = true
			m.tokens[id] = t
		}
	}
	return nil
}

type memUserStore struct {
	mu    sync.Mutex
	users map[domain.UserID]domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[domain.UserID]domain.User)}
}

func (m *memUserStore) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memUserStore) UserByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *memUserStore) UserByID(_ context.Context, id domain.UserID) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}
