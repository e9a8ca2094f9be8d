// Package occupancy expands reservation stay ranges into daily rows and
// aggregates them into the daily table: mean paid rate per
// (date, room type, arrangement) and a hotel-wide daily occupancy rate.
package occupancy

import (
	"sort"
	"strings"
	"time"

	"hotel_forecast/internal/adapters/observability"
	"hotel_forecast/internal/calendar"
	"hotel_forecast/internal/domain"
)

// Room-type categories recognized by the first-letter mapping.
const (
	Deluxe         = "Deluxe"
	ExecutiveSuite = "Executive Suite"
	Suite          = "Suite"
	FamilySuite    = "Family Suite"
)

// MapRoomType resolves a raw room-type code to its category by the first
// letter. The table mirrors the upstream PMS convention, including B mapping
// to Executive Suite; codes outside it resolve to false and the row is
// dropped rather than guessed.
func MapRoomType(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	switch s[0] {
	case 'D':
		return Deluxe, true
	case 'E', 'B':
		return ExecutiveSuite, true
	case 'S':
		return Suite, true
	case 'F':
		return FamilySuite, true
	}
	return "", false
}

// ExpandStays produces one StayNight per (reservation, date) over the
// half-open interval [arrival, departure). Reservations with a non-positive
// stay length or an unresolvable room type are dropped silently; this is the
// row-level best-effort policy for messy source data.
func ExpandStays(rs []domain.Reservation) []domain.StayNight {
	var out []domain.StayNight
	for _, r := range rs {
		arr := midnight(r.Arrival)
		dep := midnight(r.Departure)
		if !dep.After(arr) {
			observability.DropRows("non_positive_stay", 1)
			continue
		}
		roomType, ok := MapRoomType(r.RoomType)
		if !ok {
			observability.DropRows("unmapped_room_type", 1)
			continue
		}
		for d := arr; d.Before(dep); d = d.AddDate(0, 0, 1) {
			out = append(out, domain.StayNight{
				Date:        d,
				RoomType:    roomType,
				Arrangement: r.Arrangement,
				RoomNumber:  r.RoomNumber,
				Segment:     r.Segment,
				NightlyRate: r.NightlyRate,
			})
		}
	}
	return out
}

// Options control the aggregation. All fields are optional: excluded
// segments default to COMP and HU, inventory is inferred from the data when
// no map is given, and maintenance/holidays default to empty.
type Options struct {
	ExcludedSegments []string
	Inventory        map[string]int
	Maintenance      []domain.Maintenance
	Holidays         []domain.Holiday
}

// DefaultExcludedSegments are the segments that do not count as paid.
var DefaultExcludedSegments = []string{"COMP", "HU"}

type dayTotals struct {
	sold        map[string]struct{}
	blocked     map[string]struct{}
	seen        map[string]struct{}
	maintenance int
}

// Aggregate computes the daily aggregate table from expanded stay rows.
// Occupancy is a hotel-wide metric: every (room type, arrangement) row of a
// date carries the same rate, min(1, sold/available) with
// available = max(1, inventory - blocked - maintenance).
func Aggregate(stays []domain.StayNight, opts Options) []domain.DailyAggregate {
	excluded := opts.ExcludedSegments
	if excluded == nil {
		excluded = DefaultExcludedSegments
	}
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, s := range excluded {
		excludedSet[strings.ToUpper(s)] = struct{}{}
	}
	paid := func(segment string) bool {
		_, ok := excludedSet[strings.ToUpper(segment)]
		return !ok
	}

	maintByDay := make(map[time.Time]int)
	for _, m := range opts.Maintenance {
		maintByDay[midnight(m.Date)] += m.Quantity
	}

	totalInventory := 0
	for _, n := range opts.Inventory {
		totalInventory += n
	}

	type comboKey struct {
		date        time.Time
		roomType    string
		arrangement string
	}
	type comboAgg struct {
		sum   float64
		count int
	}

	days := make(map[time.Time]*dayTotals)
	combos := make(map[comboKey]*comboAgg)

	for _, s := range stays {
		d := midnight(s.Date)
		dt := days[d]
		if dt == nil {
			dt = &dayTotals{
				sold:    map[string]struct{}{},
				blocked: map[string]struct{}{},
				seen:    map[string]struct{}{},
			}
			days[d] = dt
		}
		if s.RoomNumber != "" {
			dt.seen[s.RoomNumber] = struct{}{}
			if paid(s.Segment) {
				dt.sold[s.RoomNumber] = struct{}{}
			} else {
				dt.blocked[s.RoomNumber] = struct{}{}
			}
		}
		if paid(s.Segment) && s.NightlyRate != nil {
			k := comboKey{date: d, roomType: s.RoomType, arrangement: s.Arrangement}
			c := combos[k]
			if c == nil {
				c = &comboAgg{}
				combos[k] = c
			}
			c.sum += *s.NightlyRate
			c.count++
		}
	}

	holidayFlags := holidayIndex(opts.Holidays)

	out := make([]domain.DailyAggregate, 0, len(combos))
	for k, c := range combos {
		dt := days[k.date]
		inventory := totalInventory
		if inventory == 0 {
			inventory = len(dt.seen)
		}
		maint := maintByDay[k.date]
		available := inventory - len(dt.blocked) - maint
		if available < 1 {
			available = 1
		}
		occ := float64(len(dt.sold)) / float64(available)
		if occ > 1.0 {
			occ = 1.0
		}
		flags := holidayFlags[k.date]
		out = append(out, domain.DailyAggregate{
			Date:             k.date,
			RoomType:         k.roomType,
			Arrangement:      k.arrangement,
			AvgRoomRate:      c.sum / float64(c.count),
			OccupancyRate:    occ,
			RoomsSold:        len(dt.sold),
			RoomsBlocked:     len(dt.blocked),
			RoomsMaintenance: maint,
			Inventory:        inventory,
			Available:        available,
			NationalHoliday:  flags.national,
			Weekend:          calendar.IsWeekend(k.date),
			Event:            flags.event,
			SchoolHoliday:    flags.school,
			Fasting:          flags.fasting,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].RoomType != out[j].RoomType {
			return out[i].RoomType < out[j].RoomType
		}
		return out[i].Arrangement < out[j].Arrangement
	})
	return out
}

type kindFlags struct {
	national, school, event, fasting bool
}

func holidayIndex(hs []domain.Holiday) map[time.Time]kindFlags {
	out := make(map[time.Time]kindFlags, len(hs))
	for _, h := range hs {
		d := midnight(h.Date)
		f := out[d]
		switch h.Kind {
		case domain.KindNational, domain.KindJoint:
			f.national = true
		case domain.KindSchool:
			f.school = true
		case domain.KindEvent:
			f.event = true
		case domain.KindFasting:
			f.fasting = true
		}
		out[d] = f
	}
	return out
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
