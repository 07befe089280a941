package core

import "github.com/dkeye/photowall/internal/domain"

// Ledger is the append-only, dedup-aware photo collection for one
// event. Photos arrive from three independent sources (push notify,
// client assertion, reconciliation); the file-ref index guarantees at
// most one Photo per external file regardless of which source wins.
type Ledger struct {
	photos []domain.Photo
	index  map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{index: make(map[string]struct{})}
}

// Add appends p unless its file ref is already known. A false return
// is a normal dedup race, never an error.
func (l *Ledger) Add(p domain.Photo) bool {
	if _, dup := l.index[p.FileRef]; dup {
		return false
	}
	l.index[p.FileRef] = struct{}{}
	l.photos = append(l.photos, p)
	return true
}

func (l *Ledger) Has(fileRef string) bool {
	_, ok := l.index[fileRef]
	return ok
}

func (l *Ledger) Len() int { return len(l.photos) }

// Photos returns a copy; the ledger's own slice is never shared.
func (l *Ledger) Photos() []domain.Photo {
	out := make([]domain.Photo, len(l.photos))
	copy(out, l.photos)
	return out
}
