package domain

import "time"

// DailyAggregate is one row of the daily aggregate table: one
// (date, room type, arrangement) combination with its mean paid rate and the
// hotel-wide occupancy for that date. The count columns and raw holiday-kind
// flags are kept for the quality monitor.
type DailyAggregate struct {
	Date        time.Time
	RoomType    string
	Arrangement string

	AvgRoomRate   float64
	OccupancyRate float64 // hotel-wide, identical across rows of a date

	RoomsSold        int
	RoomsBlocked     int
	RoomsMaintenance int
	Inventory        int
	Available        int

	NationalHoliday bool // national or joint kind on this date
	Weekend         bool
	Event           bool
	SchoolHoliday   bool
	Fasting         bool
}

// OccupancyForecast is the occupancy model's prediction for one future date.
type OccupancyForecast struct {
	Date          time.Time
	Occupancy     float64
	Holiday       bool // expanded holiday flag (bridge/weekend propagation applied)
	Weekend       bool
	SchoolHoliday bool
	Event         bool
}

// RateForecast is the rate model's prediction for one
// (future date, room type, arrangement) combination.
type RateForecast struct {
	Date               time.Time
	RoomType           string
	Arrangement        string
	Rate               float64
	PredictedOccupancy float64
	Holiday            bool
	Weekend            bool
	SchoolHoliday      bool
	Event              bool
	Bridge             bool
	BlockLength        int
}

// CombinedRow is the union schema handed to the serving layer. Historical
// rows carry actuals with error fields forced to 0; forecast rows have nil
// actual and error fields.
type CombinedRow struct {
	Date     time.Time
	RoomType string

	ActualRate *float64
	ActualOcc  *float64

	ForecastRate float64
	ForecastOcc  float64

	ErrRate *float64
	ErrOcc  *float64

	Holiday       bool
	Weekend       bool
	SchoolHoliday bool
	Event         bool
	BlockLength   int
	Bridge        bool
}

// IsForecast reports whether the row is a future prediction rather than a
// historical actual.
func (r CombinedRow) IsForecast() bool { return r.ActualRate == nil && r.ActualOcc == nil }

// PredictionRow is one row of the transparent per-row prediction table:
// the rate model's full feature vector plus both predictions. Debug/audit
// artifact, not read by the serving layer.
type PredictionRow struct {
	Date              time.Time
	NationalHoliday   bool
	Weekend           bool
	Event             bool
	SchoolHoliday     bool
	Bridge            bool
	Holiday           bool
	BlockLength       int
	PositionInBlock   int
	DistanceToHoliday int
	DayOfWeek         int
	DayOfMonth        int
	Month             int
	Occupancy         float64 // predicted occupancy fed to the rate model
	RoomType          string
	Arrangement       string
	PredictedRate     float64
}
