package domain

import "time"

type Role string

const (
	RoleParticipant Role = "participant"
	RoleDisplay     Role = "display"
)

func (r Role) Valid() bool {
	return r == RoleParticipant || r == RoleDisplay
}

// Session is a participant's identity for one connection lifetime.
// Created on join, destroyed when the connection closes.
type Session struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId"`
	JoinedAt time.Time `json:"joinedAt"`
	Role     Role      `json:"role"`
	Active   bool      `json:"isActive"`
}
