package core

import (
	"sync"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is an in-memory room serialized by mu.
// It never closes adapter-owned resources.
type roomImpl struct {
	room domain.Room

	mu      sync.Mutex
	members map[ConnectionID]*Connection
	byUser  map[domain.UserID]map[ConnectionID]struct{}
	banned  map[domain.UserID]struct{}
}

func NewRoomService(room domain.Room, banned []domain.UserID) RoomService {
	r := &roomImpl{
		room:    room,
		members: make(map[ConnectionID]*Connection),
		byUser:  make(map[domain.UserID]map[ConnectionID]struct{}),
		banned:  make(map[domain.UserID]struct{}, len(banned)),
	}
	for _, u := range banned {
		r.banned[u] = struct{}{}
	}
	return r
}

func (r *roomImpl) Room() domain.Room { return r.room }

func (r *roomImpl) Do(fn func(RoomService) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

func (r *roomImpl) MemberCount() int { return len(r.members) }

func (r *roomImpl) HasMember(id ConnectionID) bool {
	_, ok := r.members[id]
	return ok
}

func (r *roomImpl) IsBanned(user domain.UserID) bool {
	_, ok := r.banned[user]
	return ok
}

func (r *roomImpl) AddMember(c *Connection) error {
	if r.IsBanned(c.UserID()) {
		return domain.ErrBanned
	}
	if r.HasMember(c.ID()) {
		return domain.ErrAlreadyMember
	}
	if err := c.trackRoom(r.room.ID); err != nil {
		return err
	}
	r.members[c.ID()] = c
	conns, ok := r.byUser[c.UserID()]
	if !ok {
		conns = make(map[ConnectionID]struct{})
		r.byUser[c.UserID()] = conns
	}
	conns[c.ID()] = struct{}{}
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(c.ID())).Str("user", string(c.UserID())).Msg("member added")
	return nil
}

func (r *roomImpl) RemoveMember(id ConnectionID) (*Connection, bool) {
	c, ok := r.members[id]
	if !ok {
		return nil, false
	}
	delete(r.members, id)
	if conns, ok := r.byUser[c.UserID()]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(r.byUser, c.UserID())
		}
	}
	c.untrackRoom(r.room.ID)
	log.Info().Str("module", "core.room").Str("room", string(r.room.ID)).Str("conn", string(id)).Msg("member removed")
	return c, true
}

func (r *roomImpl) RemoveUser(user domain.UserID) []*Connection {
	conns := r.byUser[user]
	out := make([]*Connection, 0, len(conns))
	for id := range conns {
		if c, ok := r.RemoveMember(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *roomImpl) Ban(user domain.UserID) {
	r.banned[user] = struct{}{}
}

func (r *roomImpl) Unban(user domain.UserID) bool {
	if _, ok := r.banned[user]; !ok {
		return false
	}
	delete(r.banned, user)
	return true
}

func (r *roomImpl) Broadcast(from ConnectionID, data Frame) PublishResult {
	res := PublishResult{}
	for id, m := range r.members {
		if id == from {
			continue
		}
		if err := m.SendFrame(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	out := make([]MemberDTO, 0, len(r.members))
	for id, c := range r.members {
		ident := c.Identity()
		out = append(out, MemberDTO{ConnectionID: id, UserID: ident.UserID, Username: ident.Username})
	}
	return out
}
