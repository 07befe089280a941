package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	req := require.New(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal(500, cfg.MaxConnections)
	req.Equal(60*time.Second, cfg.PhotoWindow)
	req.Equal(20, cfg.PhotoBurst)
	req.Equal(2*time.Second, cfg.ChatWindow)
	req.Equal(10*time.Second, cfg.SyncInterval)
	req.Equal(24*time.Hour, cfg.EventTTL)
	req.Equal("https://www.googleapis.com/drive/v3", cfg.Drive.BaseURL)
}

func TestRoomSettings_Mapping(t *testing.T) {
	req := require.New(t)
	cfg := &Config{
		MaxConnections: 10,
		PhotoWindow:    time.Minute,
		PhotoBurst:     20,
		ChatWindow:     2 * time.Second,
		SyncInterval:   10 * time.Second,
		SyncPageSize:   100,
		SyncMaxFiles:   2000,
		PlayInterval:   5 * time.Second,
		EventTTL:       24 * time.Hour,
	}

	set := cfg.RoomSettings()
	req.Equal(10, set.MaxConnections)
	req.Equal(20, set.PhotoRule.Burst)
	req.False(set.PhotoRule.Strict)
	req.Equal(2*time.Second, set.ChatRule.Window)
	req.Equal(1, set.ChatRule.Burst)
	req.True(set.ChatRule.Strict)
}
