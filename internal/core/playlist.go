package core

import (
	"math/rand"

	"github.com/dkeye/photowall/internal/domain"
)

// Playlist keeps the slideshow order independent of ledger insertion
// order. New photos are inserted right after the cursor so they are
// shown soon; when the cursor runs off the end the whole sequence is
// reshuffled and the cursor resets, giving a fair non-repeating cycle.
type Playlist struct {
	order  []domain.Photo
	cursor int
	rnd    *rand.Rand
}

// NewPlaylist takes an explicit rand source so tests can pin the
// shuffle order.
func NewPlaylist(rnd *rand.Rand) *Playlist {
	return &Playlist{rnd: rnd}
}

func (p *Playlist) Len() int { return len(p.order) }

// Insert places photo immediately after the current cursor.
func (p *Playlist) Insert(photo domain.Photo) {
	if len(p.order) == 0 {
		p.order = append(p.order, photo)
		p.cursor = 0
		return
	}
	at := p.cursor + 1
	p.order = append(p.order, domain.Photo{})
	copy(p.order[at+1:], p.order[at:])
	p.order[at] = photo
}

// Advance moves to the next entry and returns it along with its index
// and the sequence length. Running past the end reshuffles the whole
// sequence and restarts from index zero. ok is false on an empty list.
func (p *Playlist) Advance() (photo domain.Photo, index, total int, ok bool) {
	if len(p.order) == 0 {
		return domain.Photo{}, 0, 0, false
	}
	p.cursor++
	if p.cursor >= len(p.order) {
		p.rnd.Shuffle(len(p.order), func(i, j int) {
			p.order[i], p.order[j] = p.order[j], p.order[i]
		})
		p.cursor = 0
	}
	return p.order[p.cursor], p.cursor, len(p.order), true
}

// Snapshot returns a copy of the current order and the cursor, used to
// seed freshly joined display connections.
func (p *Playlist) Snapshot() ([]domain.Photo, int) {
	out := make([]domain.Photo, len(p.order))
	copy(out, p.order)
	return out, p.cursor
}
