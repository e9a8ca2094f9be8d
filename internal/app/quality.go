package app

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/observability"
	"hotel_forecast/internal/domain"
	"hotel_forecast/internal/occupancy"
)

// Advisory thresholds. A breach flags the dataset unhealthy but never blocks
// a pipeline run; the monitor binary is what turns unhealthy into a nonzero
// exit.
const (
	maxOutlierShare = 0.05
	maxOverallMAPE  = 25.0
)

// maxMAPEByRoomType reflects how volatile each category's rate actually is:
// the small suite categories have thin samples and wide swings.
var maxMAPEByRoomType = map[string]float64{
	occupancy.Deluxe:         15.0,
	occupancy.ExecutiveSuite: 25.0,
	occupancy.Suite:          40.0,
	occupancy.FamilySuite:    40.0,
}

type Issue struct {
	Check   string
	Detail  string
	Blocker bool
}

type Report struct {
	Issues         []Issue
	OverallMAPE    float64
	MAPEByRoomType map[string]float64
}

// Healthy reports whether no blocking issue was found.
func (r Report) Healthy() bool {
	for _, i := range r.Issues {
		if i.Blocker {
			return false
		}
	}
	return true
}

// CheckQuality audits the published tables: continuity and consistency of
// the daily aggregates, rate outliers, and realized forecast error where
// fresh actuals overlap rows that were forecast in an earlier run.
func CheckQuality(daily []domain.DailyAggregate, combined []domain.CombinedRow, holidays []domain.Holiday) Report {
	var rep Report

	rep.add(checkDateContinuity(daily)...)
	rep.add(checkInventoryConsistency(daily)...)
	rep.add(checkRateOutliers(daily)...)
	rep.add(checkBounds(daily)...)
	rep.add(checkHolidayFlags(daily, holidays)...)

	overall, byType := realizedMAPE(daily, combined)
	rep.OverallMAPE = overall
	rep.MAPEByRoomType = byType

	if !math.IsNaN(overall) {
		observability.ForecastMAPE.WithLabelValues("all").Set(overall)
		if overall > maxOverallMAPE {
			rep.add(Issue{Check: "mape", Blocker: true,
				Detail: fmt.Sprintf("overall ARR MAPE %.1f%% exceeds %.1f%%", overall, maxOverallMAPE)})
		}
	}
	for rt, m := range byType {
		observability.ForecastMAPE.WithLabelValues(rt).Set(m)
		limit, ok := maxMAPEByRoomType[rt]
		if ok && m > limit {
			rep.add(Issue{Check: "mape", Blocker: true,
				Detail: fmt.Sprintf("%s ARR MAPE %.1f%% exceeds %.1f%%", rt, m, limit)})
		}
	}

	for _, i := range rep.Issues {
		ev := log.Warn()
		if i.Blocker {
			ev = log.Error()
		}
		ev.Str("check", i.Check).Msg(i.Detail)
	}
	return rep
}

func (r *Report) add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

func checkDateContinuity(daily []domain.DailyAggregate) []Issue {
	seen := make(map[time.Time]struct{})
	var min, max time.Time
	for _, d := range daily {
		k := d.Date
		seen[k] = struct{}{}
		if min.IsZero() || k.Before(min) {
			min = k
		}
		if k.After(max) {
			max = k
		}
	}
	if len(seen) == 0 {
		return []Issue{{Check: "continuity", Blocker: true, Detail: "daily table is empty"}}
	}
	var gaps int
	for d := min; !d.After(max); d = d.AddDate(0, 0, 1) {
		if _, ok := seen[d]; !ok {
			gaps++
		}
	}
	if gaps > 0 {
		return []Issue{{Check: "continuity",
			Detail: fmt.Sprintf("%d missing dates between %s and %s", gaps, min.Format("2006-01-02"), max.Format("2006-01-02"))}}
	}
	return nil
}

// checkInventoryConsistency flags room types whose reported inventory changes
// between dates; inventory is expected to be stable across a dataset.
func checkInventoryConsistency(daily []domain.DailyAggregate) []Issue {
	byType := make(map[string]map[int]struct{})
	for _, d := range daily {
		if byType[d.RoomType] == nil {
			byType[d.RoomType] = make(map[int]struct{})
		}
		byType[d.RoomType][d.Inventory] = struct{}{}
	}
	var out []Issue
	for rt, vals := range byType {
		if len(vals) > 1 {
			out = append(out, Issue{Check: "inventory",
				Detail: fmt.Sprintf("%s reports %d distinct inventory values", rt, len(vals))})
		}
	}
	return out
}

// checkRateOutliers applies the Tukey fence (1.5 IQR) to the rate
// distribution and flags the dataset if more than 5% of rows fall outside.
func checkRateOutliers(daily []domain.DailyAggregate) []Issue {
	rates := make([]float64, 0, len(daily))
	for _, d := range daily {
		if d.AvgRoomRate > 0 {
			rates = append(rates, d.AvgRoomRate)
		}
	}
	if len(rates) < 4 {
		return nil
	}
	sort.Float64s(rates)
	q1 := quantile(rates, 0.25)
	q3 := quantile(rates, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	outliers := 0
	for _, r := range rates {
		if r < lo || r > hi {
			outliers++
		}
	}
	share := float64(outliers) / float64(len(rates))
	if share > maxOutlierShare {
		return []Issue{{Check: "rate_outliers",
			Detail: fmt.Sprintf("%.1f%% of rates outside [%.2f, %.2f]", share*100, lo, hi)}}
	}
	return nil
}

func checkBounds(daily []domain.DailyAggregate) []Issue {
	var out []Issue
	for _, d := range daily {
		if d.OccupancyRate > 1.0 {
			out = append(out, Issue{Check: "bounds", Blocker: true,
				Detail: fmt.Sprintf("occupancy %.3f > 1.0 on %s", d.OccupancyRate, d.Date.Format("2006-01-02"))})
		}
		if d.Inventory > 0 && d.RoomsSold > d.Inventory {
			out = append(out, Issue{Check: "bounds", Blocker: true,
				Detail: fmt.Sprintf("%d rooms sold exceeds inventory %d on %s", d.RoomsSold, d.Inventory, d.Date.Format("2006-01-02"))})
		}
	}
	return out
}

// checkHolidayFlags cross-references the daily table's holiday flag against
// the holiday calendar (national and joint days count).
func checkHolidayFlags(daily []domain.DailyAggregate, holidays []domain.Holiday) []Issue {
	expected := make(map[time.Time]bool)
	for _, h := range holidays {
		if h.Kind == domain.KindNational || h.Kind == domain.KindJoint {
			expected[dayKey(h.Date)] = true
		}
	}
	mismatched := make(map[time.Time]struct{})
	for _, d := range daily {
		if d.NationalHoliday != expected[dayKey(d.Date)] {
			mismatched[dayKey(d.Date)] = struct{}{}
		}
	}
	if len(mismatched) > 0 {
		return []Issue{{Check: "holiday_flags",
			Detail: fmt.Sprintf("%d dates disagree with the holiday calendar", len(mismatched))}}
	}
	return nil
}

// realizedMAPE joins fresh actuals onto rows that were published as
// forecasts (nil actuals) in an earlier combined table, measuring how wrong
// the previous run was where reality has since arrived. NaN when nothing
// overlaps yet.
func realizedMAPE(daily []domain.DailyAggregate, combined []domain.CombinedRow) (float64, map[string]float64) {
	type key struct {
		date     time.Time
		roomType string
	}
	actuals := make(map[key]float64, len(daily))
	for _, d := range daily {
		actuals[key{dayKey(d.Date), d.RoomType}] = d.AvgRoomRate
	}

	type acc struct {
		sum float64
		n   int
	}
	overall := acc{}
	byType := make(map[string]*acc)
	for _, c := range combined {
		if !c.IsForecast() {
			continue
		}
		actual, ok := actuals[key{dayKey(c.Date), c.RoomType}]
		if !ok || actual <= 0 {
			continue
		}
		pe := math.Abs(actual-c.ForecastRate) / actual * 100
		overall.sum += pe
		overall.n++
		a := byType[c.RoomType]
		if a == nil {
			a = &acc{}
			byType[c.RoomType] = a
		}
		a.sum += pe
		a.n++
	}

	if overall.n == 0 {
		return math.NaN(), map[string]float64{}
	}
	out := make(map[string]float64, len(byType))
	for rt, a := range byType {
		out[rt] = a.sum / float64(a.n)
	}
	return overall.sum / float64(overall.n), out
}

// quantile linearly interpolates over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
