package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (f *fakeSignal) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrConnectionClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) setFull(v bool) {
	f.mu.Lock()
	f.full = v
	f.mu.Unlock()
}

func (f *fakeSignal) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// events decodes every queued frame into a generic map.
func (f *fakeSignal) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeSignal) ofType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

type memMessages struct {
	mu   sync.Mutex
	msgs []domain.ChatMessage
	fail bool
}

var errStoreDown = errors.New("store down")

func (m *memMessages) AppendMessage(_ context.Context, msg domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memMessages) LoadRecentMessages(_ context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatMessage
	for _, msg := range m.msgs {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (m *memMessages) inRoom(roomID domain.RoomID) []domain.ChatMessage {
	out, _ := m.LoadRecentMessages(context.Background(), roomID, 1<<30)
	return out
}

type memBans struct {
	mu   sync.Mutex
	bans map[domain.RoomID]map[domain.UserID]string
}

func newMemBans() *memBans {
	return &memBans{bans: make(map[domain.RoomID]map[domain.UserID]string)}
}

func (m *memBans) SaveBan(_ context.Context, roomID domain.RoomID, userID domain.UserID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bans[roomID] == nil {
		m.bans[roomID] = make(map[domain.UserID]string)
	}
	m.bans[roomID][userID] = reason
	return nil
}

func (m *memBans) DeleteBan(_ context.Context, roomID domain.RoomID, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bans[roomID], userID)
	return nil
}

func (m *memBans) ListBans(_ context.Context, roomID domain.RoomID) ([]domain.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.UserID
	for u := range m.bans[roomID] {
		out = append(out, u)
	}
	return out, nil
}

type harness struct {
	reg      *Registry
	router   *Router
	messages *memMessages
	bans     *memBans
}

func newHarness(t *testing.T, opts RegistryOptions, rooms ...domain.RoomID) *harness {
	t.Helper()
	h := &harness{messages: &memMessages{}, bans: newMemBans()}
	h.reg = NewRegistry(h.messages, h.bans, opts)
	h.router = NewRouter(h.reg, h.messages, SimplePolicy{}, 0)
	for i, id := range rooms {
		require.NoError(t, h.reg.Open(context.Background(), domain.Room{
			ID:        id,
			Name:      string(id),
			OwnerID:   "owner",
			CreatedAt: time.Unix(int64(i), 0),
		}))
	}
	return h
}

func newConn(user string) (*core.Connection, *fakeSignal) {
	sig := &fakeSignal{}
	id := domain.Identity{UserID: domain.UserID(user), Username: user, Role: domain.RoleMember}
	return core.NewConnection(id, sig), sig
}
