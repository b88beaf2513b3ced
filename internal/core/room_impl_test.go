package core

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSignal struct {
	mu     sync.Mutex
	frames []Frame
	full   bool
	closed bool
}

func (f *fakeSignal) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return domain.ErrConnectionClosed
	}
	if f.full {
		return ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeSignal) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newConn(user string) (*Connection, *fakeSignal) {
	sig := &fakeSignal{}
	return NewConnection(domain.Identity{UserID: domain.UserID(user), Username: user, Role: domain.RoleMember}, sig), sig
}

func newRoom(banned ...domain.UserID) RoomService {
	return NewRoomService(domain.Room{ID: "r1", Name: "general"}, banned)
}

func TestRoom_AddMember(t *testing.T) {
	room := newRoom("mallory")
	alice, _ := newConn("alice")
	mallory, _ := newConn("mallory")

	require.NoError(t, room.AddMember(alice))
	assert.True(t, room.HasMember(alice.ID()))
	assert.True(t, alice.InRoom("r1"))
	assert.Equal(t, 1, room.MemberCount())

	assert.ErrorIs(t, room.AddMember(alice), domain.ErrAlreadyMember)
	assert.ErrorIs(t, room.AddMember(mallory), domain.ErrBanned)
	assert.False(t, mallory.InRoom("r1"))
}

func TestRoom_AddMemberAfterTeardown(t *testing.T) {
	room := newRoom()
	alice, _ := newConn("alice")

	_, ok := alice.Teardown()
	require.True(t, ok)

	assert.ErrorIs(t, room.AddMember(alice), domain.ErrConnectionClosed)
	assert.Equal(t, 0, room.MemberCount())
}

func TestRoom_BroadcastSkipsSender(t *testing.T) {
	room := newRoom()
	alice, aliceSig := newConn("alice")
	bob, bobSig := newConn("bob")
	carol, carolSig := newConn("carol")
	for _, c := range []*Connection{alice, bob, carol} {
		require.NoError(t, room.AddMember(c))
	}
	carolSig.full = true

	res := room.Broadcast(alice.ID(), Frame(`{"type":"message"}`))

	assert.Equal(t, 1, res.SendTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, carol.ID(), res.Dropped[0].ID())
	assert.Equal(t, 0, aliceSig.count())
	assert.Equal(t, 1, bobSig.count())
}

func TestRoom_RemoveUserTakesEveryConnection(t *testing.T) {
	room := newRoom()
	phone, _ := newConn("alice")
	laptop, _ := newConn("alice")
	bob, _ := newConn("bob")
	for _, c := range []*Connection{phone, laptop, bob} {
		require.NoError(t, room.AddMember(c))
	}

	removed := room.RemoveUser("alice")

	assert.Len(t, removed, 2)
	assert.Equal(t, 1, room.MemberCount())
	assert.False(t, phone.InRoom("r1"))
	assert.False(t, laptop.InRoom("r1"))
	assert.Empty(t, room.RemoveUser("alice"))
}

func TestRoom_BanUnban(t *testing.T) {
	room := newRoom()
	room.Ban("bob")
	assert.True(t, room.IsBanned("bob"))
	assert.True(t, room.Unban("bob"))
	assert.False(t, room.Unban("bob"))
	assert.False(t, room.IsBanned("bob"))
}

func TestRoom_MembersSnapshot(t *testing.T) {
	room := newRoom()
	alice, _ := newConn("alice")
	require.NoError(t, room.AddMember(alice))

	snap := room.MembersSnapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, alice.ID(), snap[0].ConnectionID)
	assert.Equal(t, "alice", snap[0].Username)
}

func TestConnection_TeardownOnlyOnce(t *testing.T) {
	room := newRoom()
	alice, _ := newConn("alice")
	require.NoError(t, room.AddMember(alice))

	rooms, ok := alice.Teardown()
	assert.True(t, ok)
	assert.Equal(t, []domain.RoomID{"r1"}, rooms)
	assert.True(t, alice.Closed())

	rooms, ok = alice.Teardown()
	assert.False(t, ok)
	assert.Nil(t, rooms)
}

func TestConnection_SendWrapsTransportFailure(t *testing.T) {
	alice, sig := newConn("alice")
	require.NoError(t, alice.Send(NewErrorEvent("join", "r1", domain.ErrBanned)))

	var ev ErrorEvent
	require.NoError(t, json.Unmarshal(sig.frames[0], &ev))
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "banned", ev.Code)
	assert.Equal(t, "join", ev.Request)

	sig.full = true
	err := alice.Send(NewErrorEvent("join", "r1", domain.ErrBanned))
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
	assert.ErrorIs(t, err, ErrBackpressure)
}

func TestSnapshotEvent_EmptyHistoryEncodesArray(t *testing.T) {
	f, err := Encode(NewSnapshotEvent("r1", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"message","roomId":"r1","messages":[]}`, string(f))
}
