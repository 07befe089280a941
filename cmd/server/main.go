package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/photowall/internal/adapters/drive"
	router "github.com/dkeye/photowall/internal/adapters/http"
	"github.com/dkeye/photowall/internal/app"
	"github.com/dkeye/photowall/internal/config"
	"github.com/dkeye/photowall/internal/moderation"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	mod, err := moderation.New(loadWordlist(cfg.WordlistPath))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build moderation machine")
	}

	tokens := drive.NewRefreshingTokenSource(
		cfg.Drive.TokenURL,
		cfg.Drive.ClientID,
		cfg.Drive.ClientSecret,
		cfg.Drive.RefreshToken,
	)
	store := drive.NewClient(cfg.Drive.BaseURL, cfg.Drive.UploadURL, tokens)

	sup := app.NewSupervisor(ctx, cfg.RoomSettings(), store, mod.IsOffensive)

	r := router.SetupRouter(ctx, cfg, sup, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Photowall server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

// loadWordlist reads one censored word per line; a missing file means
// moderation runs with an empty list.
func loadWordlist(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("wordlist not found, moderation disabled")
		return nil
	}
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.TrimSpace(line); w != "" && !strings.HasPrefix(w, "#") {
			words = append(words, w)
		}
	}
	return words
}
