package filestore

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_forecast/internal/adapters/observability"
	"hotel_forecast/internal/domain"
)

// Reservations loads the reservation extract. Rows with unparseable arrival
// or departure dates are dropped, not zero-filled; stay-length and room-type
// validation happens downstream in the aggregator.
func (s *Store) Reservations(ctx context.Context) ([]domain.Reservation, error) {
	header, records, err := readTable(s.ReservationsPath)
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	out := make([]domain.Reservation, 0, len(records))
	dropped := 0
	for _, rec := range records {
		arrival, aerr := parseDate(field(rec, cols, "arrival_date"))
		departure, derr := parseDate(field(rec, cols, "depart_date"))
		if aerr != nil || derr != nil {
			dropped++
			continue
		}
		r := domain.Reservation{
			RoomNumber:  field(rec, cols, "room_number"),
			RoomType:    field(rec, cols, "room_type"),
			Arrangement: field(rec, cols, "arrangement"),
			Arrival:     arrival,
			Departure:   departure,
			Segment:     field(rec, cols, "segment"),
		}
		if raw := field(rec, cols, "room_rate"); raw != "" {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
				r.NightlyRate = &v
			}
		}
		out = append(out, r)
	}
	if dropped > 0 {
		observability.DropRows("unparseable_date", dropped)
		log.Warn().Int("rows", dropped).Str("path", s.ReservationsPath).Msg("dropped reservations with unparseable dates")
	}
	return out, nil
}

// Holidays loads the (date, kind) table. A missing path degrades to an empty
// set; unknown kinds and bad dates drop the row.
func (s *Store) Holidays(ctx context.Context) ([]domain.Holiday, error) {
	if s.HolidaysPath == "" {
		return nil, nil
	}
	if _, err := statOptional(s.HolidaysPath); err != nil {
		log.Warn().Str("path", s.HolidaysPath).Msg("holiday table missing, assuming none")
		return nil, nil
	}
	header, records, err := readTable(s.HolidaysPath)
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	var out []domain.Holiday
	for _, rec := range records {
		date, err := parseDate(field(rec, cols, "date"))
		if err != nil {
			observability.DropRows("unparseable_date", 1)
			continue
		}
		kind, ok := holidayKind(field(rec, cols, "kind"))
		if !ok {
			observability.DropRows("unknown_holiday_kind", 1)
			continue
		}
		out = append(out, domain.Holiday{Date: date, Kind: kind})
	}
	return out, nil
}

func holidayKind(raw string) (domain.HolidayKind, bool) {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.TrimSuffix(k, " holiday")
	switch domain.HolidayKind(k) {
	case domain.KindNational, domain.KindJoint, domain.KindSchool, domain.KindEvent, domain.KindFasting:
		return domain.HolidayKind(k), true
	}
	return "", false
}

// Maintenance loads the rooms-out-of-service table; optional.
func (s *Store) Maintenance(ctx context.Context) ([]domain.Maintenance, error) {
	if s.MaintenancePath == "" {
		return nil, nil
	}
	if _, err := statOptional(s.MaintenancePath); err != nil {
		log.Warn().Str("path", s.MaintenancePath).Msg("maintenance table missing, assuming none")
		return nil, nil
	}
	header, records, err := readTable(s.MaintenancePath)
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	var out []domain.Maintenance
	for _, rec := range records {
		date, err := parseDate(field(rec, cols, "date"))
		if err != nil {
			observability.DropRows("unparseable_date", 1)
			continue
		}
		qty, err := strconv.Atoi(field(rec, cols, "quantity"))
		if err != nil || qty < 0 {
			observability.DropRows("bad_quantity", 1)
			continue
		}
		out = append(out, domain.Maintenance{
			Date:     date,
			RoomType: field(rec, cols, "room type"),
			Quantity: qty,
		})
	}
	return out, nil
}
