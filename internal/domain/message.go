package domain

import "time"

const (
	MinChatLen = 1
	MaxChatLen = 50
)

// ChatMessage is ephemeral: it exists only as a wire message and is
// never stored anywhere.
type ChatMessage struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SourceSession string    `json:"sourceSessionId"`
	Timestamp     time.Time `json:"timestamp"`
}
