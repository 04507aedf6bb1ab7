package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/hangout-mates/signaling/internal/adapters/http"
	"github.com/hangout-mates/signaling/internal/app"
	"github.com/hangout-mates/signaling/internal/config"
	"github.com/hangout-mates/signaling/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	m := metrics.New()
	broadcaster := app.NewBroadcaster(m)
	directory := app.NewDirectory(app.RoomPolicy(cfg.RoomPolicy), broadcaster)
	registry := app.NewRegistry()
	orch := app.NewOrchestrator(registry, directory, broadcaster, m)

	go reapLoop(ctx, directory, m, cfg.ReapInterval, cfg.RoomTTL)

	r := router.SetupRouter(ctx, cfg, orch, m)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("policy", cfg.RoomPolicy).Msg("signaling server started")
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

// reapLoop sweeps rooms that were minted over HTTP but never joined. Rooms
// that held members clean themselves up when the last one leaves.
func reapLoop(ctx context.Context, d *app.Directory, m *metrics.Metrics, every, ttl time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := d.Reap(ttl); n > 0 {
				m.Add(metrics.RoomsReaped, uint64(n))
			}
		}
	}
}
