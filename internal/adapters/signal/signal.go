// Package signal is the WebSocket adapter for the room signaling relay. It
// owns the transport endpoints; everything behind it speaks core.Frame.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/app"
	"github.com/hangout-mates/signaling/internal/config"
	"github.com/hangout-mates/signaling/internal/core"
	"github.com/hangout-mates/signaling/internal/protocol"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch    *app.Orchestrator
	Cfg     *config.Config
	Limiter *JoinLimiter
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:    orch,
		Cfg:     cfg,
		Limiter: NewJoinLimiter(cfg.JoinLimit, cfg.JoinInterval),
	}
}

// WsConn wraps a gorilla connection behind a buffered outbound queue so
// TrySend never blocks the caller.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and registers the connection once; every
// subsequent event for its lifetime is dispatched by the same readPump.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	conn.conn.SetReadLimit(ctl.Cfg.ReadLimit)

	ctx, cancel := context.WithCancel(ctx)
	cid := ctl.Orch.Connect(conn, cancel)
	log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("new WS connection")

	// The client needs its own id to be addressable as a signal target.
	_ = conn.TrySend(protocol.NewConnected(cid))

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn)
}
