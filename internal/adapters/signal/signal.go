package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/auth"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// AccessCookie is the cookie a browser client may carry its access token in.
const AccessCookie = "access_token"

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	AllowedOrigins []string
}

func (o *Options) withDefaults() {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
}

type SignalWSController struct {
	Router  *app.Router
	Auth    *auth.ConnectionAuthenticator
	Limiter *RoomRateLimiter

	opts     Options
	upgrader websocket.Upgrader
}

func NewSignalWSController(router *app.Router, authn *auth.ConnectionAuthenticator, limiter *RoomRateLimiter, opts Options) *SignalWSController {
	opts.withDefaults()
	ctl := &SignalWSController{
		Router:  router,
		Auth:    authn,
		Limiter: limiter,
		opts:    opts,
	}
	ctl.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ctl.checkOrigin,
	}
	return ctl
}

// checkOrigin admits requests without an Origin header (non-browser
// clients) and any origin when the list holds "*".
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(ctl.opts.AllowedOrigins, "*") || slices.Contains(ctl.opts.AllowedOrigins, origin)
}

// WsSignalConn is the gorilla-backed core.SignalConnection. Frames queue on
// send and are written by the connection's write pump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{conn: ws, send: make(chan core.Frame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return domain.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops the write pump; it flushes nothing further and closes the
// socket, which in turn ends the read pump.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal authenticates the handshake and, only on success, upgrades
// and starts the connection's pumps. Rejected attempts never become a
// connection.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	cookieToken, _ := c.Cookie(AccessCookie)
	res := ctl.Auth.Authenticate(auth.Handshake{
		Authorization: c.GetHeader("Authorization"),
		QueryToken:    c.Query("token"),
		CookieToken:   cookieToken,
	})
	if res.State != auth.Authenticated {
		log.Warn().Str("module", "signal").Str("reason", res.Reason).Str("remote", c.ClientIP()).Msg("handshake rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrorCode(res.Err), "reason": res.Reason})
		return
	}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	sc := newWsSignalConn(ws, ctl.opts.SendBuffer)
	conn := core.NewConnection(res.Identity, sc)
	ctx, cancel := context.WithCancel(ctx)
	s := &wsSession{ctl: ctl, conn: conn, sc: sc, cancel: cancel}

	log.Info().
		Str("module", "signal").
		Str("conn", string(conn.ID())).
		Str("user", string(res.Identity.UserID)).
		Str("username", res.Identity.Username).
		Msg("ws connected")

	go s.writePump(ctx)
	go s.readPump(ctx)
}

// wsSession ties a connection to its pumps. finish runs once, whichever
// pump fails first.
type wsSession struct {
	ctl    *SignalWSController
	conn   *core.Connection
	sc     *WsSignalConn
	cancel context.CancelFunc
	once   sync.Once
}

func (s *wsSession) finish() {
	s.once.Do(func() {
		s.cancel()
		s.ctl.Router.Disconnect(s.conn)
		log.Info().Str("module", "signal").Str("conn", string(s.conn.ID())).Msg("ws closed")
	})
}
