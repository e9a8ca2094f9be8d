package filestore

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"hotel_forecast/internal/domain"
)

var dailyAggregateHeader = []string{
	"Date", "Room Type", "Arrangement", "Average Room Rate", "Occupancy Rate",
	"Rooms Sold", "Rooms Excluded", "Rooms Maintenance", "Room Inventory", "Available Inventory",
	"Is_Holiday", "Is_Weekend", "Is_Event", "Is_Fasting", "Is_SchoolHoliday",
}

var combinedHeader = []string{
	"Date", "Room Type", "Average Room Rate", "Occ", "Forecasted ARR", "Forecasted Occ",
	"Error ARR", "Error Occ", "Is_Holiday", "Is_Weekend", "Is_SchoolHoliday", "Is_Event",
	"holiday_block_length", "Is_Bridge",
}

var predictionsHeader = []string{
	"Date", "Is_NationalHoliday", "Is_Weekend", "Is_Event", "Is_SchoolHoliday", "Is_Bridge",
	"Is_Holiday", "Holiday_Duration", "Days_of_Holiday", "Distance_to_Holiday",
	"Day_of_Week", "Day_of_Month", "Month", "Occupancy Rate", "Room Type", "Arrangement", "ARR_pred",
}

// writeAtomic writes a CSV table to a temp file in the target directory and
// renames it over the destination, so concurrent readers only ever see the
// previous complete artifact or the new complete one.
func (s *Store) writeAtomic(name string, header []string, rows [][]string) error {
	if err := os.MkdirAll(s.OutDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(s.OutDir, name)

	tmp, err := os.CreateTemp(s.OutDir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *Store) WriteDailyAggregates(ctx context.Context, rows []domain.DailyAggregate) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = []string{
			r.Date.Format("2006-01-02"), r.RoomType, r.Arrangement,
			formatFloat(r.AvgRoomRate), formatFloat(r.OccupancyRate),
			strconv.Itoa(r.RoomsSold), strconv.Itoa(r.RoomsBlocked), strconv.Itoa(r.RoomsMaintenance),
			strconv.Itoa(r.Inventory), strconv.Itoa(r.Available),
			strconv.FormatBool(r.NationalHoliday), strconv.FormatBool(r.Weekend),
			strconv.FormatBool(r.Event), strconv.FormatBool(r.Fasting), strconv.FormatBool(r.SchoolHoliday),
		}
	}
	return s.writeAtomic(DailyAggregatesFile, dailyAggregateHeader, recs)
}

func (s *Store) WriteCombined(ctx context.Context, rows []domain.CombinedRow) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = []string{
			r.Date.Format("2006-01-02"), r.RoomType,
			formatOptFloat(r.ActualRate), formatOptFloat(r.ActualOcc),
			formatFloat(r.ForecastRate), formatFloat(r.ForecastOcc),
			formatOptFloat(r.ErrRate), formatOptFloat(r.ErrOcc),
			strconv.FormatBool(r.Holiday), strconv.FormatBool(r.Weekend),
			strconv.FormatBool(r.SchoolHoliday), strconv.FormatBool(r.Event),
			strconv.Itoa(r.BlockLength), strconv.FormatBool(r.Bridge),
		}
	}
	return s.writeAtomic(CombinedFile, combinedHeader, recs)
}

func (s *Store) WritePredictions(ctx context.Context, rows []domain.PredictionRow) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = []string{
			r.Date.Format("2006-01-02"),
			strconv.FormatBool(r.NationalHoliday), strconv.FormatBool(r.Weekend),
			strconv.FormatBool(r.Event), strconv.FormatBool(r.SchoolHoliday), strconv.FormatBool(r.Bridge),
			strconv.FormatBool(r.Holiday),
			strconv.Itoa(r.BlockLength), strconv.Itoa(r.PositionInBlock), strconv.Itoa(r.DistanceToHoliday),
			strconv.Itoa(r.DayOfWeek), strconv.Itoa(r.DayOfMonth), strconv.Itoa(r.Month),
			formatFloat(r.Occupancy), r.RoomType, r.Arrangement, formatFloat(r.PredictedRate),
		}
	}
	return s.writeAtomic(PredictionsFile, predictionsHeader, recs)
}

func (s *Store) ReadDailyAggregates(ctx context.Context) ([]domain.DailyAggregate, error) {
	header, records, err := readTable(filepath.Join(s.OutDir, DailyAggregatesFile))
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	out := make([]domain.DailyAggregate, 0, len(records))
	for _, rec := range records {
		date, err := parseDate(field(rec, cols, "date"))
		if err != nil {
			continue
		}
		r := domain.DailyAggregate{
			Date:            date,
			RoomType:        field(rec, cols, "room type"),
			Arrangement:     field(rec, cols, "arrangement"),
			NationalHoliday: parseBool(field(rec, cols, "is_holiday")),
			Weekend:         parseBool(field(rec, cols, "is_weekend")),
			Event:           parseBool(field(rec, cols, "is_event")),
			Fasting:         parseBool(field(rec, cols, "is_fasting")),
			SchoolHoliday:   parseBool(field(rec, cols, "is_schoolholiday")),
		}
		r.AvgRoomRate, _ = strconv.ParseFloat(field(rec, cols, "average room rate"), 64)
		r.OccupancyRate, _ = strconv.ParseFloat(field(rec, cols, "occupancy rate"), 64)
		r.RoomsSold, _ = strconv.Atoi(field(rec, cols, "rooms sold"))
		r.RoomsBlocked, _ = strconv.Atoi(field(rec, cols, "rooms excluded"))
		r.RoomsMaintenance, _ = strconv.Atoi(field(rec, cols, "rooms maintenance"))
		r.Inventory, _ = strconv.Atoi(field(rec, cols, "room inventory"))
		r.Available, _ = strconv.Atoi(field(rec, cols, "available inventory"))
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ReadCombined(ctx context.Context) ([]domain.CombinedRow, error) {
	header, records, err := readTable(filepath.Join(s.OutDir, CombinedFile))
	if err != nil {
		return nil, err
	}
	cols := columns(header)

	out := make([]domain.CombinedRow, 0, len(records))
	for _, rec := range records {
		date, err := parseDate(field(rec, cols, "date"))
		if err != nil {
			continue
		}
		r := domain.CombinedRow{
			Date:          date,
			RoomType:      field(rec, cols, "room type"),
			Holiday:       parseBool(field(rec, cols, "is_holiday")),
			Weekend:       parseBool(field(rec, cols, "is_weekend")),
			SchoolHoliday: parseBool(field(rec, cols, "is_schoolholiday")),
			Event:         parseBool(field(rec, cols, "is_event")),
			Bridge:        parseBool(field(rec, cols, "is_bridge")),
		}
		r.ForecastRate, _ = strconv.ParseFloat(field(rec, cols, "forecasted arr"), 64)
		r.ForecastOcc, _ = strconv.ParseFloat(field(rec, cols, "forecasted occ"), 64)
		r.BlockLength, _ = strconv.Atoi(field(rec, cols, "holiday_block_length"))
		r.ActualRate = parseOptFloat(field(rec, cols, "average room rate"))
		r.ActualOcc = parseOptFloat(field(rec, cols, "occ"))
		r.ErrRate = parseOptFloat(field(rec, cols, "error arr"))
		r.ErrOcc = parseOptFloat(field(rec, cols, "error occ"))
		out = append(out, r)
	}
	return out, nil
}

func parseOptFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

var _ interface {
	domain.ReservationSource
	domain.HolidaySource
	domain.MaintenanceSource
	domain.ArtifactStore
} = (*Store)(nil)
