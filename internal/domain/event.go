// Package domain contains entities without logic, just meta-data.
package domain

import "time"

type EventStatus string

const (
	StatusActive EventStatus = "active"
	StatusEnded  EventStatus = "ended"
)

// Event is the per-room record. Counts are derived on read from the
// ledger and the connection registry, never stored here.
type Event struct {
	ID        string      `json:"id"`
	Title     string      `json:"title,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Status    EventStatus `json:"status"`
	FolderRef string      `json:"-"`
}

func (e *Event) Active() bool {
	return e != nil && e.Status == StatusActive
}
