package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/photowall/internal/adapters/drive"
)

// Supervisor is the keyed actor registry: exactly one Room per public
// event id, created on demand. This makes the one-instance-per-event
// invariant explicit instead of relying on host magic.
type Supervisor struct {
	ctx       context.Context
	set       Settings
	store     drive.Store
	offensive func(string) bool

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewSupervisor(ctx context.Context, set Settings, store drive.Store, offensive func(string) bool) *Supervisor {
	return &Supervisor{
		ctx:       ctx,
		set:       set,
		store:     store,
		offensive: offensive,
		rooms:     make(map[string]*Room),
	}
}

// Room returns the actor for publicID, instantiating it on first use.
func (s *Supervisor) Room(publicID string) *Room {
	s.mu.RLock()
	r, ok := s.rooms[publicID]
	s.mu.RUnlock()
	if ok {
		return r
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok = s.rooms[publicID]; ok {
		return r
	}
	r = NewRoom(s.ctx, publicID, s.set, s.store, s.offensive)
	s.rooms[publicID] = r
	log.Info().Str("module", "app.supervisor").Str("event_id", publicID).Msg("room instantiated")
	return r
}

// Evict stops a room and forgets it. The next request for the same id
// gets a fresh actor that rehydrates from its identity key.
func (s *Supervisor) Evict(publicID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[publicID]; ok {
		r.Stop()
		delete(s.rooms, publicID)
		log.Info().Str("module", "app.supervisor").Str("event_id", publicID).Msg("room evicted")
	}
}

// RoomCount is exposed for health reporting.
func (s *Supervisor) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
