package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/observability"
	redisad "hotel_forecast/internal/adapters/redis"
	"hotel_forecast/internal/app"
	"hotel_forecast/internal/domain"
	"hotel_forecast/internal/shared"
	"hotel_forecast/internal/storage/filestore"
)

// monitor audits the published artifacts and exits nonzero when a blocking
// quality issue is found, so a scheduler can page on it.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve()

	ctx := context.Background()
	store := filestore.New(cfg.ReservationsPath, cfg.HolidaysPath, cfg.MaintenancePath, cfg.OutputDir)

	daily, err := store.ReadDailyAggregates(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("read daily aggregates failed")
	}
	combined, err := store.ReadCombined(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read combined failed, skipping forecast-error checks")
	}
	holidays, err := store.Holidays(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read holidays failed, skipping holiday-flag checks")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}
	if sum, ok := app.LoadRunSummary(ctx, cache); ok {
		log.Info().
			Int64("version", sum.Version).
			Int("daily_rows", sum.DailyRows).
			Int("combined_rows", sum.CombinedRows).
			Dur("age", time.Since(sum.CompletedAt)).
			Msg("last publish")
	}

	rep := app.CheckQuality(daily, combined, holidays)
	log.Info().
		Int("issues", len(rep.Issues)).
		Bool("healthy", rep.Healthy()).
		Float64("overall_mape", rep.OverallMAPE).
		Msg("quality check complete")

	if !rep.Healthy() {
		os.Exit(1)
	}
}
