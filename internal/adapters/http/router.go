// Package http is request/response glue around the room actors: REST
// endpoints for the event lifecycle, the upload path, and the
// websocket upgrade. No room state lives here.
package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/photowall/internal/adapters/drive"
	"github.com/dkeye/photowall/internal/app"
	"github.com/dkeye/photowall/internal/config"
)

// ClientTokenMiddleware pins a stable opaque token to each browser so
// reconnects can reassert the same session id.
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

func SetupRouter(ctx context.Context, cfg *config.Config, sup *app.Supervisor, store drive.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	sessionStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("PhotowallSessions", sessionStore))
	r.Use(ClientTokenMiddleware())

	h := &handlers{cfg: cfg, sup: sup, store: store}

	api := r.Group("/api")
	api.POST("/events", h.createEvent)
	api.GET("/events/:id", h.getEvent)
	api.DELETE("/events/:id", h.endEvent)
	api.POST("/events/:id/photos", h.uploadPhoto)
	api.GET("/events/:id/ws", func(c *gin.Context) {
		h.connect(ctx, c)
	})
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": sup.RoomCount()})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
