package app

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dkeye/photowall/internal/core"
	"github.com/dkeye/photowall/internal/domain"
)

// Wire error codes surfaced to clients.
const (
	codeInvalidMessage     = "invalid_message"
	codeInvalidPhoto       = "invalid_photo"
	codeInvalidChat        = "invalid_chat"
	codeProfanityDetected  = "profanity_detected"
	codeRateLimitExceeded  = "rate_limit_exceeded"
	codeSessionExpired     = "session_expired"
	codeUnknownMessageType = "unknown_message_type"
)

type errorMsg struct {
	Type         string `json:"type"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	RetryAfterMs int64  `json:"retryAfterMs,omitempty"`
}

type joinedMsg struct {
	Type         string         `json:"type"`
	EventID      string         `json:"eventId"`
	Photos       []domain.Photo `json:"photos"`
	Timestamp    int64          `json:"timestamp"`
	Playlist     []domain.Photo `json:"playlist,omitempty"`
	CurrentIndex *int           `json:"currentIndex,omitempty"`
}

type photoAddedMsg struct {
	Type  string       `json:"type"`
	Photo domain.Photo `json:"photo"`
}

type playPhotoMsg struct {
	Type      string       `json:"type"`
	Photo     domain.Photo `json:"photo"`
	Index     int          `json:"index"`
	Total     int          `json:"total"`
	Timestamp int64        `json:"timestamp"`
}

type chatMsg struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	Content       string `json:"content"`
	SourceSession string `json:"sourceSessionId"`
	Timestamp     int64  `json:"timestamp"`
}

type activityEndedMsg struct {
	Type      string `json:"type"`
	EventID   string `json:"eventId"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

var validate = validator.New()

func (r *Room) sendError(e *connEntry, code, message string, retryAfterMs int64) {
	r.send(e, errorMsg{Type: "error", Code: code, Message: message, RetryAfterMs: retryAfterMs})
}

// dispatch routes one inbound frame by its type envelope. A legacy
// bare {sessionId} frame is accepted as a participant join.
func (r *Room) dispatch(e *connEntry, data []byte) {
	var env struct {
		Type      string `json:"type"`
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		r.sendError(e, codeInvalidMessage, "malformed json", 0)
		return
	}
	switch env.Type {
	case "join":
		r.handleJoin(e, data)
	case "":
		if env.SessionID != "" {
			r.joinSession(e, env.SessionID, domain.RoleParticipant)
			return
		}
		r.sendError(e, codeInvalidMessage, "missing message type", 0)
	case "photo_added":
		r.handlePhotoSubmit(e, data)
	case "chat":
		r.handleChat(e, data)
	case "ping":
		r.send(e, struct {
			Type string `json:"type"`
		}{"pong"})
	default:
		r.logger.Warn().Str("type", env.Type).Msg("unknown message type")
		r.sendError(e, codeUnknownMessageType, "unknown message type: "+env.Type, 0)
	}
}

func (r *Room) handleJoin(e *connEntry, data []byte) {
	var p struct {
		SessionID string `json:"sessionId"`
		Role      string `json:"role"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" {
		r.sendError(e, codeInvalidMessage, "join requires a sessionId", 0)
		return
	}
	role := domain.Role(p.Role)
	if p.Role == "" {
		role = domain.RoleParticipant
	}
	if !role.Valid() {
		r.sendError(e, codeInvalidMessage, "unknown role: "+p.Role, 0)
		return
	}
	r.joinSession(e, p.SessionID, role)
}

func (r *Room) joinSession(e *connEntry, sessionID string, role domain.Role) {
	if superseded := r.reg.join(e, sessionID, role, r.event.ID, r.now()); superseded != nil {
		superseded.conn.Close(closeNormal, "superseded by a newer connection")
	}
	r.logger.Info().Str("session", sessionID).Str("role", string(role)).Msg("session joined")

	msg := joinedMsg{
		Type:      "joined",
		EventID:   r.event.ID,
		Photos:    r.ledger.Photos(),
		Timestamp: r.now().UnixMilli(),
	}
	if role == domain.RoleDisplay {
		order, cursor := r.playlist.Snapshot()
		msg.Playlist = order
		msg.CurrentIndex = &cursor
		r.maybeStartPlayback()
	}
	r.send(e, msg)
}

// resolveSession maps a connection back to its live session. A miss
// means the session table was wiped while the transport survived (the
// actor was recycled); the client is told to reconnect and rejoin.
func (r *Room) resolveSession(e *connEntry) (*domain.Session, bool) {
	sess, ok := r.reg.session(e)
	if !ok {
		r.sendError(e, codeSessionExpired, "session expired, reconnect and rejoin", 0)
		e.conn.Close(closeSessionExpired, "session expired")
		r.reg.detach(e.handle)
		return nil, false
	}
	return sess, true
}

type photoPayload struct {
	FileRef      string `json:"externalFileRef" validate:"required"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"required,url"`
	FullURL      string `json:"fullUrl" validate:"required,url"`
	Width        int    `json:"width" validate:"omitempty,gt=0"`
	Height       int    `json:"height" validate:"omitempty,gt=0"`
}

func (p *photoPayload) problems() []string {
	var out []string
	if err := validate.Struct(p); err != nil {
		if verr, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verr {
				out = append(out, strings.ToLower(fe.Field())+" failed "+fe.Tag())
			}
		} else {
			out = append(out, "invalid payload")
		}
	}
	if p.FileRef != "" && !domain.ValidFileRef(p.FileRef) {
		out = append(out, "externalFileRef is not a valid file reference")
	}
	if p.ThumbnailURL != "" && !domain.ValidPhotoURL(p.ThumbnailURL) {
		out = append(out, "thumbnailUrl must be https")
	}
	if p.FullURL != "" && !domain.ValidPhotoURL(p.FullURL) {
		out = append(out, "fullUrl must be https")
	}
	return out
}

func (r *Room) handlePhotoSubmit(e *connEntry, data []byte) {
	sess, ok := r.resolveSession(e)
	if !ok {
		return
	}
	var p photoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		r.sendError(e, codeInvalidMessage, "malformed photo payload", 0)
		return
	}
	if problems := p.problems(); len(problems) > 0 {
		r.sendError(e, codeInvalidPhoto, strings.Join(problems, "; "), 0)
		return
	}
	// Dedup hit: a normal race against push-notify or reconciliation.
	// Dropped silently, no broadcast, no error.
	if r.ledger.Has(p.FileRef) {
		return
	}
	win := r.reg.windows[sess.ID]
	if v := core.Check(win.photo, r.set.PhotoRule, r.now()); !v.Allowed {
		r.sendError(e, codeRateLimitExceeded, "photo rate limit exceeded", v.RetryAfter.Milliseconds())
		return
	}
	photo := domain.Photo{
		ID:            newID(),
		EventID:       r.event.ID,
		SourceSession: sess.ID,
		FileRef:       p.FileRef,
		ThumbnailURL:  p.ThumbnailURL,
		FullURL:       p.FullURL,
		UploadedAt:    r.now(),
		Width:         p.Width,
		Height:        p.Height,
	}
	win.photo = core.Record(win.photo, r.set.PhotoRule, r.now())
	r.addPhoto(photo)
}

func (r *Room) handleChat(e *connEntry, data []byte) {
	sess, ok := r.resolveSession(e)
	if !ok {
		return
	}
	var p struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		r.sendError(e, codeInvalidMessage, "malformed chat payload", 0)
		return
	}
	content := strings.TrimSpace(p.Content)
	if n := utf8.RuneCountInString(content); n < domain.MinChatLen || n > domain.MaxChatLen {
		r.sendError(e, codeInvalidChat, "chat content must be 1-50 characters", 0)
		return
	}
	if r.offensive(content) {
		r.sendError(e, codeProfanityDetected, "message contains blocked content", 0)
		return
	}
	win := r.reg.windows[sess.ID]
	if v := core.Check(win.chat, r.set.ChatRule, r.now()); !v.Allowed {
		r.sendError(e, codeRateLimitExceeded, "chat rate limit exceeded", v.RetryAfter.Milliseconds())
		return
	}
	win.chat = core.Record(win.chat, r.set.ChatRule, r.now())
	// Chat fans out to everyone, unlike photo arrivals. Never stored.
	r.broadcast(chatMsg{
		Type:          "chat",
		ID:            newID(),
		Content:       content,
		SourceSession: sess.ID,
		Timestamp:     r.now().UnixMilli(),
	}, false)
}
