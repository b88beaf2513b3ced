package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Router validates inbound room traffic and fans messages out.
type Router struct {
	Registry   *Registry
	Messages   core.MessageStore
	Policy     Policy
	MaxTextLen int

	now func() time.Time
}

func NewRouter(reg *Registry, messages core.MessageStore, policy Policy, maxTextLen int) *Router {
	if maxTextLen <= 0 {
		maxTextLen = domain.MaxMessageLen
	}
	return &Router{
		Registry:   reg,
		Messages:   messages,
		Policy:     policy,
		MaxTextLen: maxTextLen,
		now:        time.Now,
	}
}

func (rt *Router) Join(ctx context.Context, conn *core.Connection, roomID domain.RoomID) error {
	return rt.Registry.Join(ctx, roomID, conn)
}

func (rt *Router) Leave(conn *core.Connection, roomID domain.RoomID) {
	rt.Registry.Leave(roomID, conn)
}

// RoomOf resolves the target room for a message frame that carries none:
// only unambiguous when the connection is in exactly one room.
func (rt *Router) RoomOf(conn *core.Connection) (domain.RoomID, bool) {
	rooms := conn.Rooms()
	if len(rooms) != 1 {
		return "", false
	}
	return rooms[0], true
}

// Send persists and broadcasts a message from conn to every other member of
// roomID. The caller only sees its own validation or persistence failures;
// delivery problems at other members are handled by the Policy.
func (rt *Router) Send(ctx context.Context, conn *core.Connection, roomID domain.RoomID, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, domain.ErrEmptyText
	}
	if utf8.RuneCountInString(text) > rt.MaxTextLen {
		return domain.ChatMessage{}, domain.ErrTextTooLong
	}

	ident := conn.Identity()
	var (
		msg domain.ChatMessage
		res core.PublishResult
	)
	err := rt.Registry.Publish(roomID, func(rs core.RoomService) error {
		if !rs.HasMember(conn.ID()) {
			return domain.ErrNotMember
		}
		msg = domain.ChatMessage{
			ID:           domain.MessageID(uuid.NewString()),
			RoomID:       roomID,
			SenderUserID: ident.UserID,
			SenderName:   ident.Username,
			Text:         text,
			CreatedAt:    rt.now().UTC(),
		}
		if err := rt.Messages.AppendMessage(ctx, msg); err != nil {
			return fmt.Errorf("append message: %w", err)
		}
		f, err := core.Encode(core.NewMessageEvent(msg))
		if err != nil {
			return err
		}
		res = rs.Broadcast(conn.ID(), f)
		return nil
	})
	if err != nil {
		return domain.ChatMessage{}, err
	}

	for _, slow := range res.Dropped {
		rt.onDropped(roomID, slow)
	}
	return msg, nil
}

func (rt *Router) onDropped(roomID domain.RoomID, member *core.Connection) {
	action := DisconnectMember
	if rt.Policy != nil {
		action = rt.Policy.OnBackPressure(roomID, member)
	}
	log.Warn().
		Str("module", "app.router").
		Str("room", string(roomID)).
		Str("conn", string(member.ID())).
		Int("action", int(action)).
		Msg("broadcast dropped")
	switch action {
	case DisconnectMember:
		rt.Disconnect(member)
	case DropFrame, NoAction:
	}
}

// Disconnect tears a connection down: membership first, then the transport.
// Safe to call more than once.
func (rt *Router) Disconnect(conn *core.Connection) {
	rt.Registry.Disconnect(conn)
	conn.Signal().Close()
}
