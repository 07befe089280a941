package domain

import (
	"net/url"
	"regexp"
	"time"
)

// Source session ids for photos not asserted by a client.
const (
	SourceSystem = "system"
	SourceUpload = "upload"
)

// Photo is immutable once created. FileRef is the dedup key: at most
// one Photo per external file within an event's lifetime.
type Photo struct {
	ID            string    `json:"id"`
	EventID       string    `json:"eventId"`
	SourceSession string    `json:"sourceSessionId"`
	FileRef       string    `json:"externalFileRef"`
	ThumbnailURL  string    `json:"thumbnailUrl"`
	FullURL       string    `json:"fullUrl"`
	UploadedAt    time.Time `json:"uploadedAt"`
	Width         int       `json:"width,omitempty"`
	Height        int       `json:"height,omitempty"`
}

var fileRefPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// ValidFileRef reports whether s looks like an external store file id.
func ValidFileRef(s string) bool {
	return fileRefPattern.MatchString(s)
}

// ValidPhotoURL accepts absolute https URLs only.
func ValidPhotoURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != ""
}
