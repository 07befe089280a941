package app

import (
	"github.com/dkeye/photowall/internal/core"
	"github.com/dkeye/photowall/internal/domain"
)

// Snapshot is the full read-side view of a room. Counts are derived
// here, never stored.
type Snapshot struct {
	Event            domain.Event   `json:"event"`
	Photos           []domain.Photo `json:"photos"`
	LiveConnections  int            `json:"liveConnectionCount"`
	PhotoCount       int            `json:"photoCount"`
	ParticipantCount int            `json:"participantCount"`
}

// Init creates the Event for this room. A second call fails with
// ErrAlreadyInitialized; callers treat that as "fetch instead", not as
// a hard failure. The first reconciliation pass runs before Init
// returns so direct uploads made ahead of time are visible right away.
func (r *Room) Init(title, folderRef string) (ev domain.Event, err error) {
	ran := r.do(func() {
		if r.event != nil {
			ev = *r.event
			err = core.ErrAlreadyInitialized
			return
		}
		now := r.now()
		r.event = &domain.Event{
			ID:        r.publicID,
			Title:     title,
			CreatedAt: now,
			ExpiresAt: now.Add(r.set.EventTTL),
			Status:    domain.StatusActive,
			FolderRef: folderRef,
		}
		r.logger.Info().Str("folder", folderRef).Msg("event initialized")
		r.startSync()
		r.reconcile()
		ev = *r.event
	})
	if !ran {
		return domain.Event{}, core.ErrNotFound
	}
	return ev, err
}

// GetSnapshot returns the event, the full ledger and live counts,
// resurrecting the event from the room's own key if the actor has been
// recycled.
func (r *Room) GetSnapshot() (snap Snapshot, err error) {
	ran := r.do(func() {
		if err = r.ensureEvent(); err != nil {
			return
		}
		snap = Snapshot{
			Event:            *r.event,
			Photos:           r.ledger.Photos(),
			LiveConnections:  r.reg.connCount(),
			PhotoCount:       r.ledger.Len(),
			ParticipantCount: r.reg.sessionCount(),
		}
	})
	if !ran {
		return Snapshot{}, core.ErrNotFound
	}
	return snap, err
}

// End terminates the event: timers stop, every open connection gets an
// activity_ended notice and is closed, and all registry state is
// cleared. The ledger and the event record survive, since
// reconciliation must keep reflecting the external store.
func (r *Room) End() (err error) {
	ran := r.do(func() {
		if r.event == nil {
			err = core.ErrNotFound
			return
		}
		r.event.Status = domain.StatusEnded
		r.stopSync()
		r.stopPlayback()
		r.broadcast(activityEndedMsg{
			Type:      "activity_ended",
			EventID:   r.event.ID,
			Reason:    "ended_by_host",
			Timestamp: r.now().UnixMilli(),
		}, false)
		r.reg.closeAll(closeNormal, "event ended")
		r.logger.Info().Msg("event ended")
	})
	if !ran {
		return core.ErrNotFound
	}
	return err
}

// NotifyPhoto is the fast path used by the upload handler, bypassing
// the reconciliation cadence. A dedup hit is reported as duplicate,
// not as an error: losing the race against reconciliation is expected.
func (r *Room) NotifyPhoto(fileRef, thumbnailURL, fullURL string, width, height int) (photo domain.Photo, duplicate bool, err error) {
	ran := r.do(func() {
		if err = r.ensureEvent(); err != nil {
			return
		}
		if !r.event.Active() {
			err = core.ErrEventInactive
			return
		}
		if r.ledger.Has(fileRef) {
			duplicate = true
			return
		}
		photo = domain.Photo{
			ID:            newID(),
			EventID:       r.event.ID,
			SourceSession: domain.SourceUpload,
			FileRef:       fileRef,
			ThumbnailURL:  thumbnailURL,
			FullURL:       fullURL,
			UploadedAt:    r.now(),
			Width:         width,
			Height:        height,
		}
		r.addPhoto(photo)
	})
	if !ran {
		return domain.Photo{}, false, core.ErrNotFound
	}
	return photo, duplicate, err
}

// ConnCount is read by the HTTP layer to reject connections with a 503
// before upgrading.
func (r *Room) ConnCount() (n int) {
	r.do(func() { n = r.reg.connCount() })
	return n
}

// Attach registers an accepted connection in the pending state. An
// ended event is resurrected with a fresh expiry: a reconnect
// reactivates the room.
func (r *Room) Attach(conn Conn) (handle int64, err error) {
	ran := r.do(func() {
		if r.reg.connCount() >= r.set.MaxConnections {
			err = core.ErrTooManyConnections
			return
		}
		if err = r.ensureEvent(); err != nil {
			return
		}
		if r.event.Status == domain.StatusEnded {
			r.event.Status = domain.StatusActive
			r.event.ExpiresAt = r.now().Add(r.set.EventTTL)
			r.startSync()
			r.logger.Info().Msg("event reactivated by reconnect")
		}
		e := r.reg.attach(conn)
		handle = e.handle
	})
	if !ran {
		return 0, core.ErrNotFound
	}
	return handle, err
}

// Detach tears down a closed connection's registry state.
func (r *Room) Detach(handle int64) {
	r.do(func() { r.reg.detach(handle) })
}

// HandleMessage dispatches one inbound wire message. It returns after
// the message and any fan-out it triggered are fully processed, which
// keeps per-connection processing strictly ordered.
func (r *Room) HandleMessage(handle int64, data []byte) {
	r.do(func() {
		e, ok := r.reg.byHandle[handle]
		if !ok {
			return
		}
		r.dispatch(e, data)
	})
}

// ensureEvent rehydrates a recycled actor from its stable identity
// key: the public id decodes back to the folder reference. The rebuilt
// event is empty until the next reconciliation pass; that transient
// state is documented behavior.
func (r *Room) ensureEvent() error {
	if r.event != nil {
		return nil
	}
	folderRef, err := core.DecodeID(r.publicID)
	if err != nil || folderRef == "" {
		return core.ErrNotFound
	}
	title := ""
	if name, err := r.store.FolderName(r.ctx, folderRef); err == nil {
		title = name
	} else {
		r.logger.Warn().Err(err).Msg("folder name lookup failed, restarting without title")
	}
	now := r.now()
	r.event = &domain.Event{
		ID:        r.publicID,
		Title:     title,
		CreatedAt: now,
		ExpiresAt: now.Add(r.set.EventTTL),
		Status:    domain.StatusActive,
		FolderRef: folderRef,
	}
	r.logger.Info().Msg("event auto-restarted from identity key")
	r.startSync()
	// First repopulating pass runs as a self-message so the triggering
	// operation answers first, with the documented transient empty state.
	go r.post(func() { r.reconcile() })
	return nil
}
