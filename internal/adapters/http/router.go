package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/auth"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/core"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const sessionName = "ChatSessions"

// Deps are the application services the HTTP surface is built over.
type Deps struct {
	Credentials *auth.Credentials
	Tokens      *auth.TokenService
	Rooms       core.RoomStore
	Registry    *app.Registry
	Signal      *signal.SignalWSController
	// Health reports storage reachability for /healthz.
	Health func(context.Context) error
}

func SetupRouter(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions(sessionName, store))

	a := &authHandlers{creds: d.Credentials, tokens: d.Tokens}
	rooms := &roomHandlers{rooms: d.Rooms, registry: d.Registry}

	r.GET("/healthz", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("health check")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	authGroup.POST("/signIn", a.signIn)
	authGroup.POST("/signUp", a.signUp)
	authGroup.POST("/update", a.update)
	authGroup.POST("/logout", a.logout)

	roomGroup := r.Group("/room", RequireAuth(d.Tokens))
	roomGroup.GET("", rooms.list)
	roomGroup.POST("", rooms.create)
	roomGroup.GET("/:id/members", rooms.members)
	roomGroup.POST("/:id/kick", rooms.kick)
	roomGroup.POST("/:id/ban", rooms.ban)
	roomGroup.DELETE("/:id/ban/:userId", rooms.unban)

	r.GET("/ws", func(c *gin.Context) {
		d.Signal.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
