package http

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hangout-mates/signaling/internal/adapters/signal"
	"github.com/hangout-mates/signaling/internal/app"
	"github.com/hangout-mates/signaling/internal/config"
	"github.com/hangout-mates/signaling/internal/domain"
	"github.com/hangout-mates/signaling/internal/metrics"
)

const (
	roomIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	roomIDLen      = 4
)

// newRoomID mints a short base36 token. Not cryptographically meaningful,
// just collision-resistant enough for ephemeral room names.
func newRoomID() domain.RoomID {
	b := make([]byte, roomIDLen)
	size := big.NewInt(int64(len(roomIDAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			// crypto/rand only fails if the platform entropy source is gone.
			panic(err)
		}
		b[i] = roomIDAlphabet[n.Int64()]
	}
	return domain.RoomID(b)
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, m *metrics.Metrics) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("HangoutSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewController(orch, cfg)

	api := r.Group("/api")

	api.POST("/rooms", func(c *gin.Context) {
		id := newRoomID()
		orch.Rooms.Create(id)
		log.Info().Str("module", "adapters.http").Str("room", string(id)).Msg("room minted")
		c.JSON(http.StatusOK, gin.H{"roomId": id})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	})

	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"connections": orch.Registry.Count(),
			"counters":    m.Snapshot(),
		})
	})

	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleWS(ctx, c)
	})

	return r
}
