package app

import (
	"context"
	"strings"
	"testing"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesOf(t *testing.T, sig *fakeSignal) []string {
	t.Helper()
	var out []string
	for _, ev := range sig.ofType(t, core.EventMessage) {
		if m, ok := ev["message"].(map[string]any); ok {
			out = append(out, m["text"].(string))
		}
	}
	return out
}

func TestRouter_SendFansOutToOthers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	alice, aliceSig := newConn("alice")
	bob, bobSig := newConn("bob")
	carol, carolSig := newConn("carol")
	for _, c := range []*core.Connection{alice, bob, carol} {
		require.NoError(t, h.router.Join(ctx, c, "general"))
	}

	msg, err := h.router.Send(ctx, bob, "general", "  hi  ")
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, domain.UserID("bob"), msg.SenderUserID)
	assert.Equal(t, "bob", msg.SenderName)
	assert.NotEmpty(t, msg.ID)

	assert.Equal(t, []string{"hi"}, messagesOf(t, aliceSig))
	assert.Equal(t, []string{"hi"}, messagesOf(t, carolSig))
	assert.Empty(t, messagesOf(t, bobSig))
	assert.Len(t, h.messages.inRoom("general"), 1)
}

func TestRouter_RoomsAreIsolated(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general", "random")
	alice, aliceSig := newConn("alice")
	bob, _ := newConn("bob")
	require.NoError(t, h.router.Join(ctx, alice, "general"))
	require.NoError(t, h.router.Join(ctx, bob, "general"))
	require.NoError(t, h.router.Join(ctx, bob, "random"))

	_, err := h.router.Send(ctx, bob, "random", "elsewhere")
	require.NoError(t, err)

	assert.Empty(t, messagesOf(t, aliceSig))
	assert.Empty(t, h.messages.inRoom("general"))
}

func TestRouter_SendRejections(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	h.router.MaxTextLen = 5
	alice, _ := newConn("alice")
	outsider, _ := newConn("eve")
	require.NoError(t, h.router.Join(ctx, alice, "general"))

	_, err := h.router.Send(ctx, outsider, "general", "hello")
	assert.ErrorIs(t, err, domain.ErrNotMember)
	_, err = h.router.Send(ctx, alice, "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = h.router.Send(ctx, alice, "general", " \t\n")
	assert.ErrorIs(t, err, domain.ErrEmptyText)
	_, err = h.router.Send(ctx, alice, "general", strings.Repeat("x", 6))
	assert.ErrorIs(t, err, domain.ErrTextTooLong)
	_, err = h.router.Send(ctx, alice, "general", "héllo")
	assert.NoError(t, err)

	assert.Len(t, h.messages.inRoom("general"), 1)
}

func TestRouter_PersistenceFailureSendsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	alice, _ := newConn("alice")
	bob, bobSig := newConn("bob")
	require.NoError(t, h.router.Join(ctx, alice, "general"))
	require.NoError(t, h.router.Join(ctx, bob, "general"))

	h.messages.fail = true
	_, err := h.router.Send(ctx, alice, "general", "lost")
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, messagesOf(t, bobSig))
}

func TestRouter_SlowMemberIsDisconnected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	alice, _ := newConn("alice")
	bob, bobSig := newConn("bob")
	carol, carolSig := newConn("carol")
	for _, c := range []*core.Connection{alice, bob, carol} {
		require.NoError(t, h.router.Join(ctx, c, "general"))
	}
	bobSig.setFull(true)

	_, err := h.router.Send(ctx, alice, "general", "hi")
	require.NoError(t, err)

	assert.True(t, bobSig.isClosed())
	assert.True(t, bob.Closed())
	assert.False(t, h.reg.IsMember("general", bob))
	assert.Equal(t, []string{"hi"}, messagesOf(t, carolSig))
	assert.True(t, h.reg.IsMember("general", carol))
}

type keepPolicy struct{}

func (keepPolicy) OnBackPressure(domain.RoomID, *core.Connection) BackpressureAction {
	return DropFrame
}

func TestRouter_DropFramePolicyKeepsMember(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	h.router.Policy = keepPolicy{}
	alice, _ := newConn("alice")
	bob, bobSig := newConn("bob")
	require.NoError(t, h.router.Join(ctx, alice, "general"))
	require.NoError(t, h.router.Join(ctx, bob, "general"))
	bobSig.setFull(true)

	_, err := h.router.Send(ctx, alice, "general", "hi")
	require.NoError(t, err)
	assert.False(t, bobSig.isClosed())
	assert.True(t, h.reg.IsMember("general", bob))
}

func TestRouter_RoomOf(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general", "random")
	alice, _ := newConn("alice")

	_, ok := h.router.RoomOf(alice)
	assert.False(t, ok)

	require.NoError(t, h.router.Join(ctx, alice, "general"))
	id, ok := h.router.RoomOf(alice)
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("general"), id)

	require.NoError(t, h.router.Join(ctx, alice, "random"))
	_, ok = h.router.RoomOf(alice)
	assert.False(t, ok)

	h.router.Leave(alice, "random")
	id, ok = h.router.RoomOf(alice)
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("general"), id)
}

func TestRouter_HistoryOrderMatchesBroadcastOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, RegistryOptions{}, "general")
	alice, _ := newConn("alice")
	bob, bobSig := newConn("bob")
	require.NoError(t, h.router.Join(ctx, alice, "general"))
	require.NoError(t, h.router.Join(ctx, bob, "general"))

	for _, text := range []string{"one", "two", "three"} {
		_, err := h.router.Send(ctx, alice, "general", text)
		require.NoError(t, err)
	}

	var stored []string
	for _, m := range h.messages.inRoom("general") {
		stored = append(stored, m.Text)
	}
	assert.Equal(t, stored, messagesOf(t, bobSig))
}
