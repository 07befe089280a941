package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	cases := []string{
		"",
		"1A2b3C_folder-ref",
		"0AbCdEfGhIjKlMnOpQrStUvWxYz9",
		"папка с фото",
		"相簿/2026",
		"emoji 📸 ref",
	}
	for _, ref := range cases {
		t.Run(ref, func(t *testing.T) {
			public := EncodeID(ref)
			back, err := DecodeID(public)
			require.NoError(t, err)
			assert.Equal(t, ref, back)
		})
	}
}

func TestCodec_OpaqueOutput(t *testing.T) {
	ref := "1A2b3C_folder-ref"
	assert.NotEqual(t, ref, EncodeID(ref))
	assert.NotContains(t, EncodeID(ref), "folder")
}

func TestCodec_RejectsGarbage(t *testing.T) {
	_, err := DecodeID("not%%base64url")
	require.Error(t, err)
}
