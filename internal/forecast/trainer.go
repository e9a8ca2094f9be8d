package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/observability"
	"hotel_forecast/internal/calendar"
	"hotel_forecast/internal/domain"
)

// Occupancy targets are clipped into the open unit interval so boundary
// dates (fully empty or fully sold hotel) do not degenerate the model.
const (
	occClipLo = 1e-6
	occClipHi = 1 - 1e-6
)

// Result carries everything one forecasting run produces.
type Result struct {
	Occupancy   []domain.OccupancyForecast
	Rates       []domain.RateForecast
	Predictions []domain.PredictionRow // transparent per-row audit table
}

// Forecast retrains both models from scratch on the historical daily
// aggregate table and predicts the horizon from the day after the last
// historical date through the end of targetYear. targetYear 0 means the year
// after the last historical date.
//
// Stage one predicts daily occupancy from calendar features; stage two
// predicts the rate per (date, room type, arrangement) with the occupancy
// prediction as an input feature.
func Forecast(ctx context.Context, history []domain.DailyAggregate, holidays []domain.Holiday, targetYear int, cfg Config) (Result, error) {
	if len(history) == 0 {
		return Result{}, ErrEmptyTrainingSet
	}

	days, targets := dailySeries(history)

	var trainDays []calendar.Day
	var occY []float64
	for _, d := range days {
		t, ok := targets[d.Date]
		if !ok {
			continue // gap-filled placeholder, no target
		}
		if t < occClipLo {
			t = occClipLo
		}
		if t > occClipHi {
			t = occClipHi
		}
		trainDays = append(trainDays, d)
		occY = append(occY, t)
	}
	observability.TrainingRows.WithLabelValues("occupancy").Set(float64(len(occY)))

	occForest, err := TrainForest(ctx, occupancyMatrix(trainDays).Rows, occY, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("occupancy model: %w", err)
	}

	lastHist := days[len(days)-1].Date
	if targetYear == 0 {
		targetYear = lastHist.Year() + 1
	}
	start := lastHist.AddDate(0, 0, 1) // never overlap history
	end := time.Date(targetYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return Result{}, ErrEmptyHorizon
	}
	future := calendar.BuildRange(start, end, holidays)
	occPred := occForest.PredictAll(occupancyMatrix(future))

	// Stage two. During training the occupancy input is the historical daily
	// rate; at inference it is stage one's prediction.
	dayByDate := make(map[time.Time]calendar.Day, len(days))
	for _, d := range days {
		dayByDate[d.Date] = d
	}
	var rateSamples []rateSample
	var rateY []float64
	for _, h := range history {
		d, ok := dayByDate[dateKey(h.Date)]
		if !ok {
			continue
		}
		rateSamples = append(rateSamples, rateSample{
			day:         d,
			occupancy:   h.OccupancyRate,
			roomType:    h.RoomType,
			arrangement: h.Arrangement,
		})
		rateY = append(rateY, h.AvgRoomRate)
	}
	if len(rateSamples) == 0 {
		return Result{}, fmt.Errorf("rate model: %w", ErrEmptyTrainingSet)
	}
	observability.TrainingRows.WithLabelValues("rate").Set(float64(len(rateY)))

	trainM := rateMatrix(rateSamples)
	rateForest, err := TrainForest(ctx, trainM.Rows, rateY, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("rate model: %w", err)
	}

	// Inference over {future dates} x {pairs observed in history}. Categories
	// never seen in training are impossible here by construction; the
	// reindex still guards the column set.
	pairs := observedPairs(history)
	inferSamples := make([]rateSample, 0, len(future)*len(pairs))
	for i, d := range future {
		for _, p := range pairs {
			inferSamples = append(inferSamples, rateSample{
				day:         d,
				occupancy:   occPred[i],
				roomType:    p[0],
				arrangement: p[1],
			})
		}
	}
	inferM := rateMatrix(inferSamples).Reindex(trainM.Cols)
	ratePred := rateForest.PredictAll(inferM)

	res := Result{
		Occupancy:   make([]domain.OccupancyForecast, len(future)),
		Rates:       make([]domain.RateForecast, len(inferSamples)),
		Predictions: make([]domain.PredictionRow, len(inferSamples)),
	}
	for i, d := range future {
		res.Occupancy[i] = domain.OccupancyForecast{
			Date:          d.Date,
			Occupancy:     occPred[i],
			Holiday:       d.Holiday,
			Weekend:       d.Weekend,
			SchoolHoliday: d.School,
			Event:         d.Event,
		}
	}
	for i, s := range inferSamples {
		res.Rates[i] = domain.RateForecast{
			Date:               s.day.Date,
			RoomType:           s.roomType,
			Arrangement:        s.arrangement,
			Rate:               ratePred[i],
			PredictedOccupancy: s.occupancy,
			Holiday:            s.day.Holiday,
			Weekend:            s.day.Weekend,
			SchoolHoliday:      s.day.School,
			Event:              s.day.Event,
			Bridge:             s.day.Bridge,
			BlockLength:        s.day.BlockLength,
		}
		res.Predictions[i] = domain.PredictionRow{
			Date:              s.day.Date,
			NationalHoliday:   s.day.National,
			Weekend:           s.day.Weekend,
			Event:             s.day.Event,
			SchoolHoliday:     s.day.School,
			Bridge:            s.day.Bridge,
			Holiday:           s.day.Holiday,
			BlockLength:       s.day.BlockLength,
			PositionInBlock:   s.day.PositionInBlock,
			DistanceToHoliday: s.day.Distance,
			DayOfWeek:         s.day.DayOfWeek,
			DayOfMonth:        s.day.DayOfMonth,
			Month:             s.day.Month,
			Occupancy:         s.occupancy,
			RoomType:          s.roomType,
			Arrangement:       s.arrangement,
			PredictedRate:     ratePred[i],
		}
	}

	log.Info().
		Int("history_days", len(trainDays)).
		Int("rate_rows", len(rateSamples)).
		Int("horizon_days", len(future)).
		Int("pairs", len(pairs)).
		Time("horizon_start", start).
		Int("target_year", targetYear).
		Msg("forecast complete")
	return res, nil
}

// dailySeries collapses the aggregate table to one enriched calendar row per
// date. Dates missing from history are gap-filled with non-holiday
// placeholders before enrichment and carry no target.
func dailySeries(history []domain.DailyAggregate) ([]calendar.Day, map[time.Time]float64) {
	flagsByDate := make(map[time.Time]calendar.Flags)
	targets := make(map[time.Time]float64)
	for _, h := range history {
		d := dateKey(h.Date)
		if _, ok := flagsByDate[d]; ok {
			continue // occupancy and flags are per-date, first row wins
		}
		flagsByDate[d] = calendar.Flags{
			Date:     d,
			National: h.NationalHoliday,
			Weekend:  h.Weekend,
			Event:    h.Event,
			School:   h.SchoolHoliday,
		}
		targets[d] = h.OccupancyRate
	}

	seq := make([]calendar.Flags, 0, len(flagsByDate))
	for _, f := range flagsByDate {
		seq = append(seq, f)
	}
	sort.Slice(seq, func(i, j int) bool { return seq[i].Date.Before(seq[j].Date) })
	return calendar.Enrich(calendar.Contiguous(seq)), targets
}

// observedPairs returns the distinct (room type, arrangement) combinations
// in history, sorted for deterministic output order.
func observedPairs(history []domain.DailyAggregate) [][2]string {
	seen := make(map[[2]string]struct{})
	for _, h := range history {
		seen[[2]string{h.RoomType, h.Arrangement}] = struct{}{}
	}
	out := make([][2]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func dateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
