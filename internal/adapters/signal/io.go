package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (s *wsSession) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		s.finish()
	}()

	ws := s.sc.conn
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-s.sc.send:
			if err := ws.SetWriteDeadline(time.Now().Add(s.ctl.opts.WriteWait)); err != nil {
				return
			}
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.ID())).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(s.ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *wsSession) readPump(ctx context.Context) {
	defer s.finish()

	ws := s.sc.conn
	ws.SetReadLimit(s.ctl.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.ctl.opts.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.ctl.opts.PongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.ID())).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.handleSignal(ctx, data)
	}
}

type inbound struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	Text   string        `json:"text"`
}

// handleSignal dispatches one inbound frame. Frames of a connection are
// handled in arrival order, one at a time.
func (s *wsSession) handleSignal(ctx context.Context, data []byte) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		s.replyError("", "", domain.ErrBadRequest)
		return
	}

	switch in.Type {
	case "join":
		s.handleJoin(ctx, in)
	case "leave":
		s.handleLeave(in)
	case "message":
		s.handleMessage(ctx, in)
	case "ping":
		s.handlePing()
	default:
		log.Warn().Str("module", "signal").Str("type", in.Type).Msg("unknown signal")
		s.replyError(in.Type, in.RoomID, domain.ErrBadRequest)
	}
}

func (s *wsSession) sendJSON(v any) {
	if err := s.conn.Send(v); err != nil && !errors.Is(err, domain.ErrConnectionClosed) {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(s.conn.ID())).Msg("sendJSON")
	}
}
