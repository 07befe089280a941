package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/photowall/internal/domain"
)

func photoWithRef(ref string) domain.Photo {
	return domain.Photo{
		ID:         ref + "-id",
		FileRef:    ref,
		UploadedAt: time.Now(),
	}
}

func TestLedger_AddAndDedup(t *testing.T) {
	req := require.New(t)
	l := NewLedger()

	req.True(l.Add(photoWithRef("file-one")))
	req.True(l.Add(photoWithRef("file-two")))
	req.False(l.Add(photoWithRef("file-one")), "second add of same ref must be a silent dedup")

	req.Equal(2, l.Len())
	req.True(l.Has("file-one"))
	req.False(l.Has("file-three"))
}

func TestLedger_PhotosReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.Add(photoWithRef("file-one"))

	snap := l.Photos()
	snap[0].FileRef = "mutated"

	assert.Equal(t, "file-one", l.Photos()[0].FileRef)
}
