// Package calendar derives the per-day feature vector used by both
// forecasting models: bridge days, the expanded holiday flag, holiday-block
// sizing and the distance to the nearest holiday. All derivations are plain
// forward/backward scans over boolean arrays and assume the input sequence
// contains every calendar day in range exactly once; BuildRange and
// Contiguous exist to enforce that precondition.
package calendar

import (
	"time"

	"hotel_forecast/internal/domain"
)

// DistanceNone is the distance reported when no holiday exists in either
// direction within the sequence.
const DistanceNone = 1_000_000_000

// Flags are the raw per-date inputs before enrichment.
type Flags struct {
	Date     time.Time
	National bool // national or joint holiday
	Weekend  bool
	Event    bool
	School   bool
}

// Day is one enriched calendar row.
type Day struct {
	Flags

	Bridge  bool
	Holiday bool // final expanded flag

	BlockLength     int // length of the contiguous holiday run containing this date, 0 outside
	PositionInBlock int // 1-based ordinal within the run, 0 outside
	Distance        int // days to the nearest holiday, 0 on holidays

	DayOfWeek  int // Monday=0
	DayOfMonth int
	Month      int
	Year       int
}

// IsWeekend reports Saturday/Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Enrich derives all calendar features over a contiguous daily sequence.
// Callers must guarantee one row per calendar day with no gaps.
func Enrich(seq []Flags) []Day {
	n := len(seq)
	out := make([]Day, n)

	seed := make([]bool, n) // national holiday or weekend
	for i, f := range seq {
		out[i].Flags = f
		seed[i] = f.National || f.Weekend
	}

	// A bridge is an ordinary day with seed days on both sides.
	bridge := make([]bool, n)
	for i := 1; i < n-1; i++ {
		bridge[i] = !seed[i] && seed[i-1] && seed[i+1]
	}

	// Holiday influence propagates outward from base = national|bridge by at
	// most two weekend hops. Two discrete passes, deliberately not collapsed
	// into a closed-form rule.
	base := make([]bool, n)
	for i := range base {
		base[i] = seq[i].National || bridge[i]
	}
	wk1 := adjacentWeekend(seq, base)
	wk2 := adjacentWeekend(seq, wk1)

	holiday := make([]bool, n)
	for i := range holiday {
		holiday[i] = base[i] || wk1[i] || wk2[i]
		out[i].Bridge = bridge[i]
		out[i].Holiday = holiday[i]
	}

	markBlocks(out, holiday)
	markDistances(out, holiday)

	for i := range out {
		d := out[i].Date
		out[i].DayOfWeek = (int(d.Weekday()) + 6) % 7
		out[i].DayOfMonth = d.Day()
		out[i].Month = int(d.Month())
		out[i].Year = d.Year()
	}
	return out
}

// adjacentWeekend marks weekend days whose immediate neighbor is marked.
func adjacentWeekend(seq []Flags, mark []bool) []bool {
	n := len(seq)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		if !seq[i].Weekend {
			continue
		}
		left := i > 0 && mark[i-1]
		right := i < n-1 && mark[i+1]
		out[i] = left || right
	}
	return out
}

// markBlocks assigns run length and 1-based position over maximal contiguous
// holiday runs.
func markBlocks(out []Day, holiday []bool) {
	n := len(holiday)
	for i := 0; i < n; {
		if !holiday[i] {
			i++
			continue
		}
		j := i
		for j < n && holiday[j] {
			j++
		}
		for k := i; k < j; k++ {
			out[k].BlockLength = j - i
			out[k].PositionInBlock = k - i + 1
		}
		i = j
	}
}

// markDistances computes min(forward, backward) scan distance to a holiday.
func markDistances(out []Day, holiday []bool) {
	n := len(holiday)
	last := -DistanceNone
	for i := 0; i < n; i++ {
		if holiday[i] {
			last = i
		}
		d := i - last
		if d > DistanceNone {
			d = DistanceNone
		}
		out[i].Distance = d
	}
	last = n - 1 + DistanceNone
	for i := n - 1; i >= 0; i-- {
		if holiday[i] {
			last = i
		}
		d := last - i
		if d > DistanceNone {
			d = DistanceNone
		}
		if d < out[i].Distance {
			out[i].Distance = d
		}
		if holiday[i] {
			out[i].Distance = 0
		}
	}
}

// FlagsFor builds raw flags for one date from a holiday table.
func FlagsFor(date time.Time, holidays []domain.Holiday) Flags {
	f := Flags{Date: date, Weekend: IsWeekend(date)}
	for _, h := range holidays {
		if !sameDay(h.Date, date) {
			continue
		}
		switch h.Kind {
		case domain.KindNational, domain.KindJoint:
			f.National = true
		case domain.KindSchool:
			f.School = true
		case domain.KindEvent:
			f.Event = true
		}
	}
	return f
}

// BuildRange materializes every calendar day in [start, end] with flags from
// the holiday table and enriches the whole sequence. Used to construct the
// future horizon and anywhere else a guaranteed-contiguous calendar is
// needed.
func BuildRange(start, end time.Time, holidays []domain.Holiday) []Day {
	start = midnight(start)
	end = midnight(end)
	if end.Before(start) {
		return nil
	}

	byDay := make(map[time.Time][]domain.Holiday, len(holidays))
	for _, h := range holidays {
		k := midnight(h.Date)
		byDay[k] = append(byDay[k], h)
	}

	var seq []Flags
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		seq = append(seq, FlagsFor(d, byDay[d]))
	}
	return Enrich(seq)
}

// Contiguous fills gaps in an ascending daily sequence with placeholder rows
// (weekend computed from the date, all holiday-kind flags false) so the
// distance/block scans see every calendar day exactly once.
func Contiguous(seq []Flags) []Flags {
	if len(seq) == 0 {
		return nil
	}
	out := make([]Flags, 0, len(seq))
	prev := midnight(seq[0].Date)
	for i, f := range seq {
		cur := midnight(f.Date)
		if i > 0 {
			for d := prev.AddDate(0, 0, 1); d.Before(cur); d = d.AddDate(0, 0, 1) {
				out = append(out, Flags{Date: d, Weekend: IsWeekend(d)})
			}
		}
		f.Date = cur
		out = append(out, f)
		prev = cur
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
