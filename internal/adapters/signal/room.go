package signal

import (
	"context"
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

func (s *wsSession) handleJoin(ctx context.Context, in inbound) {
	if in.RoomID == "" {
		s.replyError("join", "", domain.ErrRoomNotFound)
		return
	}
	if err := s.ctl.Router.Join(ctx, s.conn, in.RoomID); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(s.conn.ID())).Str("room", string(in.RoomID)).Msg("join refused")
		s.replyError("join", in.RoomID, err)
	}
}

// handleLeave drops the room; the connection stays open.
func (s *wsSession) handleLeave(in inbound) {
	roomID := in.RoomID
	if roomID == "" {
		id, ok := s.ctl.Router.RoomOf(s.conn)
		if !ok {
			return
		}
		roomID = id
	}
	s.ctl.Router.Leave(s.conn, roomID)
	s.sendJSON(core.MemberEvent{Type: core.EventLeft, RoomID: roomID})
}

func (s *wsSession) handleMessage(ctx context.Context, in inbound) {
	roomID := in.RoomID
	if roomID == "" {
		id, ok := s.ctl.Router.RoomOf(s.conn)
		if !ok {
			if len(s.conn.Rooms()) == 0 {
				s.replyError("message", "", domain.ErrNotMember)
			} else {
				s.replyError("message", "", domain.ErrBadRequest)
			}
			return
		}
		roomID = id
	}
	if s.ctl.Limiter != nil && !s.ctl.Limiter.Allow(s.conn.UserID()) {
		s.replyError("message", roomID, domain.ErrRateLimited)
		return
	}
	if _, err := s.ctl.Router.Send(ctx, s.conn, roomID, in.Text); err != nil {
		if !isClientError(err) {
			log.Error().Err(err).Str("module", "signal").Str("room", string(roomID)).Msg("send failed")
		}
		s.replyError("message", roomID, err)
	}
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrRoomNotFound,
		domain.ErrNotMember,
		domain.ErrEmptyText,
		domain.ErrTextTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
