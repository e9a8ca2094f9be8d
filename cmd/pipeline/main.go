package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/notify"
	"hotel_forecast/internal/adapters/observability"
	redisad "hotel_forecast/internal/adapters/redis"
	"hotel_forecast/internal/app"
	"hotel_forecast/internal/domain"
	"hotel_forecast/internal/forecast"
	"hotel_forecast/internal/shared"
	"hotel_forecast/internal/storage/filestore"
)

func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	log.Info().
		Str("reservations", cfg.ReservationsPath).
		Str("out", cfg.OutputDir).
		Int("trees", cfg.Trees).
		Int("target_year", cfg.TargetYear).
		Msg("pipeline starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := filestore.New(cfg.ReservationsPath, cfg.HolidaysPath, cfg.MaintenancePath, cfg.OutputDir)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	var notifier domain.Notifier
	if cfg.BackendBase != "" {
		notifier = notify.New(cfg.BackendBase, 5)
	}

	forestCfg := forecast.DefaultConfig()
	forestCfg.Trees = cfg.Trees
	forestCfg.MinLeaf = cfg.MinLeaf
	forestCfg.Seed = cfg.Seed
	if cfg.Workers > 0 {
		forestCfg.Workers = cfg.Workers
	}

	svc := app.NewPipelineService(
		store, store, store, store,
		cache, notifier,
		cfg.Inventory, cfg.ExcludedSegments, cfg.TargetYear, forestCfg,
	)

	err := runOnce(ctx, svc)
	if cfg.RefreshInterval <= 0 {
		// one-shot mode: a failed run must be visible to the scheduler
		if err != nil || ctx.Err() != nil {
			os.Exit(1)
		}
		return
	}

	// scheduled mode: re-run on an interval until signaled
	t := time.NewTicker(cfg.RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("pipeline stopping")
			return
		case <-t.C:
			runOnce(ctx, svc)
		}
	}
}

func runOnce(ctx context.Context, svc *app.PipelineService) error {
	start := time.Now()
	if err := svc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("pipeline run failed")
		return err
	}
	log.Info().Dur("took", time.Since(start)).Msg("pipeline run completed")
	return nil
}
