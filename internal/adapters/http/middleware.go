package http

import (
	"github.com/dkeye/Chat/internal/app/auth"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth verifies the bearer token on every request; nothing is cached
// between requests.
func RequireAuth(tokens auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			writeError(c, domain.ErrAuthMissing)
			return
		}
		id, err := tokens.VerifyAccessToken(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}
	}
	id, _ := v.(domain.Identity)
	return id
}
