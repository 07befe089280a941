package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullResURL(t *testing.T) {
	tests := []struct {
		name  string
		thumb string
		id    string
		want  string
	}{
		{
			name:  "size suffix replaced",
			thumb: "https://lh3.googleusercontent.com/d/abc123=s220",
			id:    "abc123",
			want:  "https://lh3.googleusercontent.com/d/abc123=s0",
		},
		{
			name:  "cropped suffix replaced",
			thumb: "https://lh3.googleusercontent.com/d/abc123=s220-c",
			id:    "abc123",
			want:  "https://lh3.googleusercontent.com/d/abc123=s0",
		},
		{
			name: "no thumbnail falls back to constructed url",
			id:   "abc123",
			want: "https://drive.google.com/uc?export=view&id=abc123",
		},
		{
			name:  "unrecognized link falls back",
			thumb: "https://example.com/thumb.jpg",
			id:    "abc123",
			want:  "https://drive.google.com/uc?export=view&id=abc123",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullResURL(tt.thumb, tt.id))
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "https://x/y=s220", ThumbnailURL("https://x/y=s220", "abc"))
	assert.Equal(t, "https://drive.google.com/thumbnail?id=abc&sz=w400", ThumbnailURL("", "abc"))
}
