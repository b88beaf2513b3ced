package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type RegistryOptions struct {
	// NotifyOnJoin broadcasts a joined event to the other members.
	NotifyOnJoin bool
	// HistoryLimit bounds the snapshot a joining connection receives.
	HistoryLimit int
}

// Registry owns the rooms and their membership. Every mutation of a room
// runs inside that room's Do, so operations on one room are linearizable
// while different rooms never wait on each other.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]core.RoomService

	messages core.MessageStore
	bans     core.BanStore
	opts     RegistryOptions
}

func NewRegistry(messages core.MessageStore, bans core.BanStore, opts RegistryOptions) *Registry {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	return &Registry{
		rooms:    make(map[domain.RoomID]core.RoomService),
		messages: messages,
		bans:     bans,
		opts:     opts,
	}
}

// Open registers a persisted room. Opening an already open room is a no-op.
func (r *Registry) Open(ctx context.Context, room domain.Room) error {
	r.mu.RLock()
	_, ok := r.rooms[room.ID]
	r.mu.RUnlock()
	if ok {
		return nil
	}
	banned, err := r.bans.ListBans(ctx, room.ID)
	if err != nil {
		return fmt.Errorf("load bans for room %s: %w", room.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return nil
	}
	r.rooms[room.ID] = core.NewRoomService(room, banned)
	log.Info().Str("module", "app.registry").Str("room", string(room.ID)).Str("name", room.Name).Int("banned", len(banned)).Msg("room opened")
	return nil
}

func (r *Registry) room(id domain.RoomID) (core.RoomService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// Join adds conn to the room and delivers the history snapshot to it before
// any later broadcast can reach it.
func (r *Registry) Join(ctx context.Context, roomID domain.RoomID, conn *core.Connection) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	return room.Do(func(rs core.RoomService) error {
		if rs.IsBanned(conn.UserID()) {
			return domain.ErrBanned
		}
		if rs.HasMember(conn.ID()) {
			return domain.ErrAlreadyMember
		}
		if conn.Closed() {
			return domain.ErrConnectionClosed
		}
		history, err := r.messages.LoadRecentMessages(ctx, roomID, r.opts.HistoryLimit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		if err := conn.Send(core.NewSnapshotEvent(roomID, history)); err != nil {
			return err
		}
		if err := rs.AddMember(conn); err != nil {
			return err
		}
		if r.opts.NotifyOnJoin {
			ident := conn.Identity()
			if f, err := core.Encode(core.MemberEvent{Type: core.EventJoined, RoomID: roomID, User: &ident}); err == nil {
				rs.Broadcast(conn.ID(), f)
			}
		}
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("conn", string(conn.ID())).Str("user", string(conn.UserID())).Msg("joined")
		return nil
	})
}

// Leave is idempotent; leaving a room one is not in, or an unknown room, is
// not an error.
func (r *Registry) Leave(roomID domain.RoomID, conn *core.Connection) {
	room, err := r.room(roomID)
	if err != nil {
		return
	}
	_ = room.Do(func(rs core.RoomService) error {
		if _, ok := rs.RemoveMember(conn.ID()); !ok {
			return nil
		}
		if r.opts.NotifyOnJoin {
			ident := conn.Identity()
			if f, err := core.Encode(core.MemberEvent{Type: core.EventLeft, RoomID: roomID, User: &ident}); err == nil {
				rs.Broadcast(conn.ID(), f)
			}
		}
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("conn", string(conn.ID())).Msg("left")
		return nil
	})
}

// Kick removes every connection of userID from the room and tells each of
// them why. Sockets stay open.
func (r *Registry) Kick(_ context.Context, roomID domain.RoomID, userID domain.UserID, reason string) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	return room.Do(func(rs core.RoomService) error {
		evict(rs, userID, core.ModerationEvent{Type: core.EventKicked, RoomID: roomID, Reason: reason})
		return nil
	})
}

// Ban blocks userID from the room and evicts any present connection in the
// same critical section, so no window exists where a banned user is still a
// member.
func (r *Registry) Ban(ctx context.Context, roomID domain.RoomID, userID domain.UserID, reason string) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	return room.Do(func(rs core.RoomService) error {
		if err := r.bans.SaveBan(ctx, roomID, userID, reason); err != nil {
			return fmt.Errorf("save ban: %w", err)
		}
		rs.Ban(userID)
		evict(rs, userID, core.ModerationEvent{Type: core.EventBanned, RoomID: roomID, Reason: reason})
		return nil
	})
}

func (r *Registry) Unban(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	return room.Do(func(rs core.RoomService) error {
		if err := r.bans.DeleteBan(ctx, roomID, userID); err != nil {
			return fmt.Errorf("delete ban: %w", err)
		}
		if rs.Unban(userID) {
			log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("user", string(userID)).Msg("unbanned")
		}
		return nil
	})
}

func evict(rs core.RoomService, userID domain.UserID, ev core.ModerationEvent) {
	removed := rs.RemoveUser(userID)
	for _, c := range removed {
		if err := c.Send(ev); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(c.ID())).Msg("moderation notice not delivered")
		}
	}
	log.Info().
		Str("module", "app.registry").
		Str("room", string(ev.RoomID)).
		Str("user", string(userID)).
		Str("action", ev.Type).
		Str("reason", ev.Reason).
		Int("connections", len(removed)).
		Msg("member evicted")
}

// Disconnect removes conn from every room it joined, silently. Only the
// first call for a connection does anything.
func (r *Registry) Disconnect(conn *core.Connection) {
	rooms, ok := conn.Teardown()
	if !ok {
		return
	}
	for _, id := range rooms {
		room, err := r.room(id)
		if err != nil {
			continue
		}
		_ = room.Do(func(rs core.RoomService) error {
			rs.RemoveMember(conn.ID())
			return nil
		})
	}
	log.Info().Str("module", "app.registry").Str("conn", string(conn.ID())).Int("rooms", len(rooms)).Msg("disconnected")
}

// Publish runs fn inside the room's serialized boundary.
func (r *Registry) Publish(roomID domain.RoomID, fn func(core.RoomService) error) error {
	room, err := r.room(roomID)
	if err != nil {
		return err
	}
	return room.Do(fn)
}

func (r *Registry) Members(roomID domain.RoomID) ([]core.MemberDTO, error) {
	var out []core.MemberDTO
	err := r.Publish(roomID, func(rs core.RoomService) error {
		out = rs.MembersSnapshot()
		return nil
	})
	return out, err
}

func (r *Registry) IsMember(roomID domain.RoomID, conn *core.Connection) bool {
	var ok bool
	err := r.Publish(roomID, func(rs core.RoomService) error {
		ok = rs.HasMember(conn.ID())
		return nil
	})
	return err == nil && ok
}

func (r *Registry) Room(roomID domain.RoomID) (domain.Room, error) {
	room, err := r.room(roomID)
	if err != nil {
		return domain.Room{}, err
	}
	return room.Room(), nil
}

// Rooms lists open rooms ordered by creation time.
func (r *Registry) Rooms() []core.RoomInfo {
	r.mu.RLock()
	rooms := make([]core.RoomService, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		info := core.RoomInfo{Room: room.Room()}
		_ = room.Do(func(rs core.RoomService) error {
			info.MemberCount = rs.MemberCount()
			return nil
		})
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
