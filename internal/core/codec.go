package core

import (
	"encoding/base64"
	"fmt"
)

// The public event id is a reversible opaque transform of the internal
// folder reference, so a room can rebuild its identity from nothing but
// its own key. Bytes are rotated before encoding so the id does not
// visually leak the underlying reference.
const idRotation = 47

// EncodeID mints the opaque public id for an internal folder reference.
func EncodeID(folderRef string) string {
	b := []byte(folderRef)
	for i := range b {
		b[i] += idRotation
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeID recovers the folder reference from a public id.
func DecodeID(publicID string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(publicID)
	if err != nil {
		return "", fmt.Errorf("decode public id: %w", err)
	}
	for i := range b {
		b[i] -= idRotation
	}
	return string(b), nil
}
