package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/photowall/internal/adapters/drive"
	"github.com/dkeye/photowall/internal/adapters/ws"
	"github.com/dkeye/photowall/internal/app"
	"github.com/dkeye/photowall/internal/config"
	"github.com/dkeye/photowall/internal/core"
)

type handlers struct {
	cfg   *config.Config
	sup   *app.Supervisor
	store drive.Store
}

// statusFor translates the actor taxonomy to HTTP. Everything else is
// a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrAlreadyInitialized), errors.Is(err, core.ErrEventInactive):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyConnections):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) createEvent(c *gin.Context) {
	var body struct {
		Title     string `json:"title"`
		FolderRef string `json:"folderRef" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	publicID := core.EncodeID(body.FolderRef)
	room := h.sup.Room(publicID)
	ev, err := room.Init(body.Title, body.FolderRef)
	if errors.Is(err, core.ErrAlreadyInitialized) {
		// Create-or-fetch: the existing event is the answer.
		c.JSON(http.StatusOK, gin.H{"event": ev})
		return
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"event": ev})
}

func (h *handlers) getEvent(c *gin.Context) {
	snap, err := h.sup.Room(c.Param("id")).GetSnapshot()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handlers) endEvent(c *gin.Context) {
	if err := h.sup.Room(c.Param("id")).End(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// uploadPhoto stores the file externally, then takes the fast path
// into the room so viewers see it without waiting for reconciliation.
func (h *handlers) uploadPhoto(c *gin.Context) {
	publicID := c.Param("id")
	folderRef, err := core.DecodeID(publicID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown event"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing photo file"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	stored, err := h.store.Upload(c.Request.Context(), folderRef, fileHeader.Filename, mimeType, f)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("upload to store failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}

	var width, height int
	if stored.ImageMeta != nil {
		width, height = stored.ImageMeta.Width, stored.ImageMeta.Height
	}
	photo, duplicate, err := h.sup.Room(publicID).NotifyPhoto(
		stored.ID,
		drive.ThumbnailURL(stored.ThumbnailLink, stored.ID),
		drive.FullResURL(stored.ThumbnailLink, stored.ID),
		width, height,
	)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"photo": photo, "duplicate": duplicate})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connect runs the join protocol: cap check before upgrade, then the
// connection is attached pending and every frame goes through the
// room's mailbox.
func (h *handlers) connect(ctx context.Context, c *gin.Context) {
	room := h.sup.Room(c.Param("id"))

	if room.ConnCount() >= h.cfg.MaxConnections {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room is full"})
		return
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	sock.SetReadLimit(h.cfg.ReadLimit)

	conn := ws.NewConn(sock, h.cfg.SendBuffer)
	handle, err := room.Attach(conn)
	if err != nil {
		conn.Close(websocket.CloseTryAgainLater, err.Error())
		return
	}

	log.Info().Str("module", "adapters.http").Str("event_id", c.Param("id")).Int64("handle", handle).Msg("connection attached")
	conn.Run(ctx,
		func(data []byte) { room.HandleMessage(handle, data) },
		func() { room.Detach(handle) },
	)
}
