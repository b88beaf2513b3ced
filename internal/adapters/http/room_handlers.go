package http

import (
	"net/http"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type roomHandlers struct {
	rooms    core.RoomStore
	registry *app.Registry
}

type createRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
}

type moderationRequest struct {
	UserID domain.UserID `json:"userId" binding:"required"`
	Reason string        `json:"reason"`
}

func (h *roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Rooms())
}

func (h *roomHandlers) create(c *gin.Context) {
	id := identityFrom(c)
	if !id.IsAdmin() {
		writeError(c, domain.ErrForbidden)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrRoomNameInvalid)
		return
	}
	room, err := h.rooms.CreateRoom(c.Request.Context(), req.Name, req.Description, req.Avatar, id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.registry.Open(c.Request.Context(), room); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(room.ID)).Str("owner", string(id.UserID)).Msg("room created")
	c.JSON(http.StatusCreated, room)
}

func (h *roomHandlers) members(c *gin.Context) {
	members, err := h.registry.Members(domain.RoomID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	if members == nil {
		members = []core.MemberDTO{}
	}
	c.JSON(http.StatusOK, members)
}

// moderated resolves the room from the path and checks the caller may
// moderate it: admins anywhere, owners in their own rooms.
func (h *roomHandlers) moderated(c *gin.Context) (domain.RoomID, bool) {
	roomID := domain.RoomID(c.Param("id"))
	room, err := h.registry.Room(roomID)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	id := identityFrom(c)
	if !id.IsAdmin() && room.OwnerID != id.UserID {
		writeError(c, domain.ErrForbidden)
		return "", false
	}
	return roomID, true
}

func (h *roomHandlers) kick(c *gin.Context) {
	roomID, ok := h.moderated(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrBadRequest)
		return
	}
	if err := h.registry.Kick(c.Request.Context(), roomID, req.UserID, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *roomHandlers) ban(c *gin.Context) {
	roomID, ok := h.moderated(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrBadRequest)
		return
	}
	if err := h.registry.Ban(c.Request.Context(), roomID, req.UserID, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *roomHandlers) unban(c *gin.Context) {
	roomID, ok := h.moderated(c)
	if !ok {
		return
	}
	if err := h.registry.Unban(c.Request.Context(), roomID, domain.UserID(c.Param("userId"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
