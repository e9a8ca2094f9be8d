package domain

import "time"

// Reservation is one raw stay record from the PMS extract. Dates are already
// parsed; unparseable rows never make it past the loader.
type Reservation struct {
	RoomNumber  string
	RoomType    string // raw code, e.g. "DLX", "EXE"
	Arrangement string
	Arrival     time.Time
	Departure   time.Time
	NightlyRate *float64
	Segment     string
}

// StayNight is one expanded row per (stay, date) over the half-open
// interval [arrival, departure). RoomType here is the mapped category.
type StayNight struct {
	Date        time.Time
	RoomType    string
	Arrangement string
	RoomNumber  string
	Segment     string
	NightlyRate *float64
}

type HolidayKind string

const (
	KindNational HolidayKind = "national"
	KindJoint    HolidayKind = "joint"
	KindSchool   HolidayKind = "school"
	KindEvent    HolidayKind = "event"
	KindFasting  HolidayKind = "fasting"
)

// Holiday is one (date, kind) row; a date may appear under several kinds.
type Holiday struct {
	Date time.Time
	Kind HolidayKind
}

// Maintenance is a count of rooms out of service on a date.
type Maintenance struct {
	Date     time.Time
	RoomType string
	Quantity int
}
