package app

import (
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/photowall/internal/domain"
)

// connEntry pairs a transport connection with the identity asserted at
// join time. Until join, sessionID is a placeholder and joined is
// false. The handle→session mapping captured here is what teardown
// uses; message-supplied ids may be stale.
type connEntry struct {
	handle    int64
	conn      Conn
	sessionID string
	role      domain.Role
	joined    bool
}

// rateWindows is the per-session pair of independent action logs.
type rateWindows struct {
	photo []time.Time
	chat  []time.Time
}

// registry is the arena-style connection/session state: plain maps
// keyed by integer handles and session ids, mutated only from the room
// run loop. No back-references live inside connection objects.
type registry struct {
	byHandle   map[int64]*connEntry
	bySession  map[string]int64
	sessions   map[string]*domain.Session
	windows    map[string]*rateWindows
	nextHandle int64
}

func newRegistry() *registry {
	return &registry{
		byHandle:  make(map[int64]*connEntry),
		bySession: make(map[string]int64),
		sessions:  make(map[string]*domain.Session),
		windows:   make(map[string]*rateWindows),
	}
}

func (g *registry) attach(conn Conn) *connEntry {
	g.nextHandle++
	e := &connEntry{
		handle:    g.nextHandle,
		conn:      conn,
		sessionID: "pending-" + newID(),
		role:      domain.RoleParticipant,
	}
	g.byHandle[e.handle] = e
	return e
}

// join swaps the placeholder identity for the asserted one and creates
// the session record plus a fresh rate-window pair. A previous live
// connection holding the same session id is superseded.
func (g *registry) join(e *connEntry, sessionID string, role domain.Role, eventID string, now time.Time) (superseded *connEntry) {
	if old, ok := g.bySession[sessionID]; ok && old != e.handle {
		superseded = g.byHandle[old]
		g.detach(old)
	}
	// A rebind under a new id releases the previous identity entirely,
	// otherwise the old id would keep pointing at this live connection.
	if e.joined && e.sessionID != sessionID {
		delete(g.bySession, e.sessionID)
		delete(g.sessions, e.sessionID)
		delete(g.windows, e.sessionID)
	}
	e.sessionID = sessionID
	e.role = role
	e.joined = true
	g.bySession[sessionID] = e.handle
	g.sessions[sessionID] = &domain.Session{
		ID:       sessionID,
		EventID:  eventID,
		JoinedAt: now,
		Role:     role,
		Active:   true,
	}
	g.windows[sessionID] = &rateWindows{}
	return superseded
}

// detach removes the connection and, if it had joined, its session and
// rate-limit state, using the handle→session mapping captured at join.
func (g *registry) detach(handle int64) {
	e, ok := g.byHandle[handle]
	if !ok {
		return
	}
	delete(g.byHandle, handle)
	if e.joined {
		delete(g.bySession, e.sessionID)
		delete(g.sessions, e.sessionID)
		delete(g.windows, e.sessionID)
	}
}

func (g *registry) session(e *connEntry) (*domain.Session, bool) {
	s, ok := g.sessions[e.sessionID]
	return s, ok
}

func (g *registry) entries() []*connEntry {
	return lo.Values(g.byHandle)
}

func (g *registry) connCount() int { return len(g.byHandle) }

func (g *registry) sessionCount() int { return len(g.sessions) }

func (g *registry) hasDisplay() bool {
	return lo.SomeBy(lo.Values(g.byHandle), func(e *connEntry) bool {
		return e.joined && e.role == domain.RoleDisplay
	})
}

// closeAll force-closes every connection and clears all tables.
func (g *registry) closeAll(code int, reason string) {
	for _, e := range g.byHandle {
		e.conn.Close(code, reason)
	}
	g.byHandle = make(map[int64]*connEntry)
	g.bySession = make(map[string]int64)
	g.sessions = make(map[string]*domain.Session)
	g.windows = make(map[string]*rateWindows)
}
