// Package app wires the pipeline stages together and owns the run-level
// policy: which failures abort a run, which only log, and what gets
// published where.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/observability"
	"hotel_forecast/internal/domain"
	"hotel_forecast/internal/forecast"
	"hotel_forecast/internal/occupancy"
)

// Cache keys invalidated after each publish. The serving layer caches the
// combined and daily tables under these; the version counter lets it detect
// a refresh cheaply.
const (
	KeyCombined       = "forecast:combined"
	KeyDaily          = "forecast:daily"
	KeyDatasetVersion = "forecast:dataset_version"
	KeyLastRun        = "forecast:last_run"
)

// RunSummary describes the most recent successful publish. The pipeline
// stores it under KeyLastRun; the monitor reads it back to report dataset
// freshness.
type RunSummary struct {
	Version      int64     `json:"version"`
	DailyRows    int       `json:"daily_rows"`
	CombinedRows int       `json:"combined_rows"`
	CompletedAt  time.Time `json:"completed_at"`
}

// LoadRunSummary fetches the last publish summary, if one exists.
func LoadRunSummary(ctx context.Context, cache domain.Cache) (RunSummary, bool) {
	var sum RunSummary
	if cache == nil {
		return sum, false
	}
	hit, err := cache.Get(ctx, KeyLastRun, &sum)
	if err != nil {
		log.Warn().Err(err).Msg("last-run summary read failed")
		return sum, false
	}
	return sum, hit
}

type PipelineService struct {
	src      domain.ReservationSource
	hol      domain.HolidaySource
	maint    domain.MaintenanceSource
	store    domain.ArtifactStore
	cache    domain.Cache    // optional
	notifier domain.Notifier // optional

	inventory  map[string]int
	excluded   []string
	targetYear int
	forestCfg  forecast.Config
}

func NewPipelineService(
	src domain.ReservationSource,
	hol domain.HolidaySource,
	maint domain.MaintenanceSource,
	store domain.ArtifactStore,
	cache domain.Cache,
	notifier domain.Notifier,
	inventory map[string]int,
	excluded []string,
	targetYear int,
	forestCfg forecast.Config,
) *PipelineService {
	return &PipelineService{
		src: src, hol: hol, maint: maint, store: store,
		cache: cache, notifier: notifier,
		inventory: inventory, excluded: excluded,
		targetYear: targetYear, forestCfg: forestCfg,
	}
}

// Run executes one full extraction-forecast-publish cycle. Any failure up to
// and including the artifact writes aborts the run; cache invalidation and
// the backend ping are best-effort and only log.
func (s *PipelineService) Run(ctx context.Context) (err error) {
	defer observability.ObserveRun(err)

	stage := time.Now()
	reservations, err := s.src.Reservations(ctx)
	if err != nil {
		return fmt.Errorf("load reservations: %w", err)
	}
	holidays, err := s.hol.Holidays(ctx)
	if err != nil {
		return fmt.Errorf("load holidays: %w", err)
	}
	maintenance, err := s.maint.Maintenance(ctx)
	if err != nil {
		return fmt.Errorf("load maintenance: %w", err)
	}
	observability.ObserveStage("load", time.Since(stage))

	stage = time.Now()
	stays := occupancy.ExpandStays(reservations)
	daily := occupancy.Aggregate(stays, occupancy.Options{
		ExcludedSegments: s.excluded,
		Inventory:        s.inventory,
		Maintenance:      maintenance,
		Holidays:         holidays,
	})
	if len(daily) == 0 {
		return fmt.Errorf("aggregate: no usable rows after expansion")
	}
	observability.ObserveStage("aggregate", time.Since(stage))
	log.Info().
		Int("reservations", len(reservations)).
		Int("stay_nights", len(stays)).
		Int("daily_rows", len(daily)).
		Msg("aggregation complete")

	if err := s.store.WriteDailyAggregates(ctx, daily); err != nil {
		return fmt.Errorf("write daily aggregates: %w", err)
	}

	stage = time.Now()
	res, err := forecast.Forecast(ctx, daily, holidays, s.targetYear, s.forestCfg)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	observability.ObserveStage("forecast", time.Since(stage))

	stage = time.Now()
	combined := forecast.Combine(daily, res.Occupancy, res.Rates)
	if err := s.store.WriteCombined(ctx, combined); err != nil {
		return fmt.Errorf("write combined: %w", err)
	}
	if err := s.store.WritePredictions(ctx, res.Predictions); err != nil {
		return fmt.Errorf("write predictions: %w", err)
	}
	observability.ObserveStage("publish", time.Since(stage))

	s.invalidate(ctx, len(daily), len(combined))
	s.notify(ctx)
	return nil
}

func (s *PipelineService) invalidate(ctx context.Context, dailyRows, combinedRows int) {
	if s.cache == nil {
		return
	}
	for _, k := range []string{KeyCombined, KeyDaily} {
		if err := s.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
		}
	}
	v, err := s.cache.Incr(ctx, KeyDatasetVersion)
	if err != nil {
		log.Warn().Err(err).Msg("dataset version bump failed")
		return
	}
	sum := RunSummary{
		Version:      v,
		DailyRows:    dailyRows,
		CombinedRows: combinedRows,
		CompletedAt:  time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, KeyLastRun, sum, 0); err != nil {
		log.Warn().Err(err).Msg("last-run summary write failed")
	}
	log.Info().Int64("version", v).Msg("dataset version bumped")
}

func (s *PipelineService) notify(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyRefresh(ctx); err != nil {
		log.Warn().Err(err).Msg("backend refresh notification failed")
		return
	}
	log.Info().Msg("backend notified of refresh")
}
