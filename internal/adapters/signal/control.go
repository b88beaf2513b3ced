package signal

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
)

func (s *wsSession) handlePing() {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: core.EventPong,
	}
	s.sendJSON(resp)
}

// replyError reports a failed request to the originating connection only.
func (s *wsSession) replyError(request string, roomID domain.RoomID, err error) {
	s.sendJSON(core.NewErrorEvent(request, roomID, err))
}
