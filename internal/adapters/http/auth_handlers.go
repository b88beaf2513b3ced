package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Chat/internal/app/auth"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// refreshKey is where the raw refresh token lives in the signed session
// cookie.
const refreshKey = "refresh_token"

type authHandlers struct {
	creds  *auth.Credentials
	tokens *auth.TokenService
}

type signInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Avatar   string `json:"avatar"`
	IsAdmin  bool   `json:"is_admin"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *authHandlers) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrBadRequest)
		return
	}
	id, err := h.creds.VerifyPassword(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.issue(c, http.StatusOK, id)
}

func (h *authHandlers) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrBadRequest)
		return
	}
	id, err := h.creds.SignUp(c.Request.Context(), req.Username, req.Password, req.Avatar, req.IsAdmin)
	if err != nil {
		writeError(c, err)
		return
	}
	h.issue(c, http.StatusCreated, id)
}

func (h *authHandlers) issue(c *gin.Context, status int, id domain.Identity) {
	pair, err := h.tokens.IssueTokens(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.storeRefresh(c, pair.Refresh); err != nil {
		writeError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("user", string(id.UserID)).Msg("tokens issued")
	c.JSON(status, tokenResponse{AccessToken: pair.Access.Token})
}

// update rotates the refresh token from the session cookie. The body is the
// bare access token string.
func (h *authHandlers) update(c *gin.Context) {
	raw, _ := sessions.Default(c).Get(refreshKey).(string)
	if raw == "" {
		writeError(c, domain.ErrAuthExpiredRefresh)
		return
	}
	pair, err := h.tokens.RotateRefresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrAuthExpiredRefresh) {
			h.clearRefresh(c)
		}
		writeError(c, err)
		return
	}
	if err := h.storeRefresh(c, pair.Refresh); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair.Access.Token)
}

func (h *authHandlers) logout(c *gin.Context) {
	raw, _ := sessions.Default(c).Get(refreshKey).(string)
	if raw != "" {
		if err := h.tokens.Revoke(c.Request.Context(), raw); err != nil {
			writeError(c, err)
			return
		}
	}
	h.clearRefresh(c)
	c.Status(http.StatusNoContent)
}

func (h *authHandlers) storeRefresh(c *gin.Context, raw string) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/auth",
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.Set(refreshKey, raw)
	return s.Save()
}

func (h *authHandlers) clearRefresh(c *gin.Context) {
	s := sessions.Default(c)
	s.Options(sessions.Options{Path: "/auth", MaxAge: -1, HttpOnly: true})
	s.Clear()
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("clear session")
	}
}
