// Package app hosts the per-event room actor and its supervisor. A
// room owns every piece of mutable state for one event — connection
// registry, sessions, rate windows, photo ledger, playlist — and
// processes one operation at a time through its mailbox, so none of
// that state needs locking.
package app

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/photowall/internal/adapters/drive"
	"github.com/dkeye/photowall/internal/core"
	"github.com/dkeye/photowall/internal/domain"
)

// Close codes beyond the RFC set.
const (
	closeNormal         = 1000
	closeSessionExpired = 4001
)

// Conn is the transport endpoint the room fans out to. The adapter
// owns the underlying socket; the room only pushes frames and asks for
// closure.
type Conn interface {
	TrySend([]byte) error
	Close(code int, reason string)
}

// Settings carries every tunable the room needs, so tests can inject
// tight windows and small caps.
type Settings struct {
	MaxConnections int
	PhotoRule      core.LimitRule
	ChatRule       core.LimitRule
	SyncInterval   time.Duration
	SyncPageSize   int
	SyncMaxFiles   int
	PlayInterval   time.Duration
	EventTTL       time.Duration
}

// DefaultSettings mirrors the production defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxConnections: 500,
		PhotoRule:      core.LimitRule{Window: 60 * time.Second, Burst: 20},
		ChatRule:       core.LimitRule{Window: 2 * time.Second, Burst: 1, Strict: true},
		SyncInterval:   10 * time.Second,
		SyncPageSize:   100,
		SyncMaxFiles:   2000,
		PlayInterval:   5 * time.Second,
		EventTTL:       24 * time.Hour,
	}
}

// Room is the per-event actor. All fields below the mailbox are owned
// by the run loop and must never be touched from outside it.
type Room struct {
	publicID  string
	set       Settings
	store     drive.Store
	offensive func(string) bool
	now       func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	mailbox chan func()
	logger  zerolog.Logger

	event    *domain.Event
	ledger   *core.Ledger
	playlist *core.Playlist
	reg      *registry

	syncTicker *time.Ticker
	syncC      <-chan time.Time
	playTicker *time.Ticker
	playC      <-chan time.Time
}

// NewRoom builds and starts an actor for one public event id. The
// offensive predicate may be nil (no moderation).
func NewRoom(parent context.Context, publicID string, set Settings, store drive.Store, offensive func(string) bool) *Room {
	ctx, cancel := context.WithCancel(parent)
	if offensive == nil {
		offensive = func(string) bool { return false }
	}
	r := &Room{
		publicID:  publicID,
		set:       set,
		store:     store,
		offensive: offensive,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		mailbox:   make(chan func(), 64),
		logger:    log.With().Str("module", "app.room").Str("event_id", publicID).Logger(),
		ledger:    core.NewLedger(),
		playlist:  core.NewPlaylist(rand.New(rand.NewSource(time.Now().UnixNano()))),
		reg:       newRegistry(),
	}
	go r.run()
	return r
}

// Stop tears the actor down. Used by the supervisor on eviction.
func (r *Room) Stop() { r.cancel() }

func (r *Room) run() {
	for {
		select {
		case <-r.ctx.Done():
			r.stopSync()
			r.stopPlayback()
			r.reg.closeAll(closeNormal, "server shutting down")
			return
		case fn := <-r.mailbox:
			fn()
		case <-r.syncC:
			r.reconcile()
		case <-r.playC:
			r.playNext()
		}
	}
}

// do posts fn into the mailbox and waits for it to finish, so each
// external operation is complete — broadcasts included — before its
// caller continues. On a stopped room fn never runs and do reports
// false; callers surface that as not-found rather than a zero value.
func (r *Room) do(fn func()) bool {
	if r.ctx.Err() != nil {
		return false
	}
	done := make(chan struct{})
	select {
	case r.mailbox <- func() {
		defer close(done)
		fn()
	}:
	case <-r.ctx.Done():
		return false
	}
	select {
	case <-done:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// post delivers fn without waiting; used for actor self-messages.
func (r *Room) post(fn func()) {
	select {
	case r.mailbox <- fn:
	case <-r.ctx.Done():
	}
}

func (r *Room) startSync() {
	if r.syncC != nil {
		return
	}
	r.syncTicker = time.NewTicker(r.set.SyncInterval)
	r.syncC = r.syncTicker.C
}

func (r *Room) stopSync() {
	if r.syncTicker != nil {
		r.syncTicker.Stop()
		r.syncTicker = nil
		r.syncC = nil
	}
}

// maybeStartPlayback arms the slideshow ticker once there is both
// something to show and a display to show it on.
func (r *Room) maybeStartPlayback() {
	if r.playC != nil || r.playlist.Len() == 0 || !r.reg.hasDisplay() {
		return
	}
	r.playTicker = time.NewTicker(r.set.PlayInterval)
	r.playC = r.playTicker.C
	r.logger.Info().Msg("playback started")
}

func (r *Room) stopPlayback() {
	if r.playTicker != nil {
		r.playTicker.Stop()
		r.playTicker = nil
		r.playC = nil
	}
}

func (r *Room) playNext() {
	if !r.event.Active() {
		r.stopPlayback()
		return
	}
	photo, index, total, ok := r.playlist.Advance()
	if !ok {
		return
	}
	r.broadcast(playPhotoMsg{
		Type:      "play_photo",
		Photo:     photo,
		Index:     index,
		Total:     total,
		Timestamp: r.now().UnixMilli(),
	}, false)
}

// addPhoto commits a deduplicated photo: ledger, playlist, display
// fan-out. Callers must have checked the dedup key already.
func (r *Room) addPhoto(photo domain.Photo) {
	r.ledger.Add(photo)
	r.playlist.Insert(photo)
	r.maybeStartPlayback()
	r.broadcast(photoAddedMsg{Type: "photo_added", Photo: photo}, true)
}

// broadcast fans v out to open connections; displayOnly restricts it
// to display-role ones. Sends are non-blocking per connection; a full
// send buffer drops the frame for that connection only.
func (r *Room) broadcast(v any, displayOnly bool) {
	b, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Err(err).Msg("broadcast marshal")
		return
	}
	for _, e := range r.reg.entries() {
		if displayOnly && e.role != domain.RoleDisplay {
			continue
		}
		if err := e.conn.TrySend(b); err != nil {
			r.logger.Warn().Err(err).Int64("handle", e.handle).Msg("dropped frame")
		}
	}
}

func (r *Room) send(e *connEntry, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Err(err).Msg("send marshal")
		return
	}
	if err := e.conn.TrySend(b); err != nil {
		r.logger.Warn().Err(err).Int64("handle", e.handle).Msg("dropped frame")
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
