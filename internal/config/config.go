package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/dkeye/photowall/internal/app"
	"github.com/dkeye/photowall/internal/core"
)

type DriveConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	UploadURL    string `mapstructure:"upload_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	Secret     string `mapstructure:"secret"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	SendBuffer int    `mapstructure:"send_buffer"`

	MaxConnections int           `mapstructure:"max_connections"`
	PhotoWindow    time.Duration `mapstructure:"photo_window"`
	PhotoBurst     int           `mapstructure:"photo_burst"`
	ChatWindow     time.Duration `mapstructure:"chat_window"`

	SyncInterval time.Duration `mapstructure:"sync_interval"`
	SyncPageSize int           `mapstructure:"sync_page_size"`
	SyncMaxFiles int           `mapstructure:"sync_max_files"`
	PlayInterval time.Duration `mapstructure:"play_interval"`
	EventTTL     time.Duration `mapstructure:"event_ttl"`

	WordlistPath string      `mapstructure:"wordlist_path"`
	Drive        DriveConfig `mapstructure:"drive"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("max_connections", 500)
	v.SetDefault("photo_window", "60s")
	v.SetDefault("photo_burst", 20)
	v.SetDefault("chat_window", "2s")
	v.SetDefault("sync_interval", "10s")
	v.SetDefault("sync_page_size", 100)
	v.SetDefault("sync_max_files", 2000)
	v.SetDefault("play_interval", "5s")
	v.SetDefault("event_ttl", "24h")
	v.SetDefault("wordlist_path", "config/wordlist.txt")
	v.SetDefault("drive.base_url", "https://www.googleapis.com/drive/v3")
	v.SetDefault("drive.upload_url", "https://www.googleapis.com/upload/drive/v3")
	v.SetDefault("drive.token_url", "https://oauth2.googleapis.com/token")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// RoomSettings maps the loaded config onto the actor's knobs.
func (c *Config) RoomSettings() app.Settings {
	return app.Settings{
		MaxConnections: c.MaxConnections,
		PhotoRule:      core.LimitRule{Window: c.PhotoWindow, Burst: c.PhotoBurst},
		ChatRule:       core.LimitRule{Window: c.ChatWindow, Burst: 1, Strict: true},
		SyncInterval:   c.SyncInterval,
		SyncPageSize:   c.SyncPageSize,
		SyncMaxFiles:   c.SyncMaxFiles,
		PlayInterval:   c.PlayInterval,
		EventTTL:       c.EventTTL,
	}
}
