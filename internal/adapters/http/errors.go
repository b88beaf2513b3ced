package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var statuses = []struct {
	err    error
	status int
}{
	{domain.ErrAuthInvalid, http.StatusUnauthorized},
	{domain.ErrAuthMissing, http.StatusUnauthorized},
	{domain.ErrAuthExpiredRefresh, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrUsernameTaken, http.StatusConflict},
	{domain.ErrRoomNotFound, http.StatusNotFound},
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrUsernameEmpty, http.StatusBadRequest},
	{domain.ErrUsernameInvalid, http.StatusBadRequest},
	{domain.ErrUsernameTooShort, http.StatusBadRequest},
	{domain.ErrUsernameTooLong, http.StatusBadRequest},
	{domain.ErrPasswordTooShort, http.StatusBadRequest},
	{domain.ErrPasswordTooLong, http.StatusBadRequest},
	{domain.ErrRoomNameInvalid, http.StatusBadRequest},
	{domain.ErrBadRequest, http.StatusBadRequest},
}

func statusOf(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with {"error": code}. Internal failures are logged
// and never leak their text.
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": domain.ErrorCode(err)})
}
