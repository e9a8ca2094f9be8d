package forecast

import (
	"sort"

	"hotel_forecast/internal/calendar"
)

// Column names follow the artifact schema so the transparent prediction
// table and the design matrices stay in one vocabulary.
var calendarCols = []string{
	"Is_NationalHoliday", "Is_Weekend", "Is_Event", "Is_SchoolHoliday",
	"Is_Bridge", "Is_Holiday", "Holiday_Duration", "Days_of_Holiday",
	"Distance_to_Holiday", "Day_of_Week", "Day_of_Month", "Month",
}

const occupancyCol = "Predicted_Occupancy"

// Matrix is a design matrix with named columns. Booleans are always encoded
// as 0/1 so train and inference never disagree on dtype.
type Matrix struct {
	Cols []string
	Rows [][]float64
}

// Reindex projects the matrix onto exactly the given column set: columns the
// matrix lacks are filled with zeros, columns the target lacks are dropped.
// This is what guarantees shape compatibility between the training design
// and the inference design regardless of which categories appear in which
// split.
func (m Matrix) Reindex(cols []string) Matrix {
	src := make(map[string]int, len(m.Cols))
	for i, c := range m.Cols {
		src[c] = i
	}
	rows := make([][]float64, len(m.Rows))
	for r, row := range m.Rows {
		out := make([]float64, len(cols))
		for i, c := range cols {
			if j, ok := src[c]; ok {
				out[i] = row[j]
			}
		}
		rows[r] = out
	}
	return Matrix{Cols: append([]string(nil), cols...), Rows: rows}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func calendarFeatures(d calendar.Day) []float64 {
	return []float64{
		b2f(d.National), b2f(d.Weekend), b2f(d.Event), b2f(d.School),
		b2f(d.Bridge), b2f(d.Holiday), float64(d.BlockLength), float64(d.PositionInBlock),
		float64(d.Distance), float64(d.DayOfWeek), float64(d.DayOfMonth), float64(d.Month),
	}
}

// occupancyMatrix builds the occupancy model's design: the calendar feature
// row minus date/year/target.
func occupancyMatrix(days []calendar.Day) Matrix {
	rows := make([][]float64, len(days))
	for i, d := range days {
		rows[i] = calendarFeatures(d)
	}
	return Matrix{Cols: append([]string(nil), calendarCols...), Rows: rows}
}

// rateSample is one row of the rate model's design: a calendar day, the
// occupancy feeding the stack (actual when training, predicted at
// inference), and the categorical pair.
type rateSample struct {
	day         calendar.Day
	occupancy   float64
	roomType    string
	arrangement string
}

// rateMatrix builds the rate design: predicted occupancy, the calendar
// features, and one-hot columns for the room-type and arrangement categories
// present in the samples (sorted for a deterministic column order).
func rateMatrix(samples []rateSample) Matrix {
	roomTypes := map[string]struct{}{}
	arrangements := map[string]struct{}{}
	for _, s := range samples {
		roomTypes[s.roomType] = struct{}{}
		arrangements[s.arrangement] = struct{}{}
	}
	rtCols := sortedKeys(roomTypes)
	arCols := sortedKeys(arrangements)

	cols := make([]string, 0, 1+len(calendarCols)+len(rtCols)+len(arCols))
	cols = append(cols, occupancyCol)
	cols = append(cols, calendarCols...)
	rtOffset := len(cols)
	for _, v := range rtCols {
		cols = append(cols, "Room Type="+v)
	}
	arOffset := len(cols)
	for _, v := range arCols {
		cols = append(cols, "Arrangement="+v)
	}

	rtIdx := indexOf(rtCols)
	arIdx := indexOf(arCols)

	rows := make([][]float64, len(samples))
	for i, s := range samples {
		row := make([]float64, len(cols))
		row[0] = s.occupancy
		copy(row[1:], calendarFeatures(s.day))
		row[rtOffset+rtIdx[s.roomType]] = 1
		row[arOffset+arIdx[s.arrangement]] = 1
		rows[i] = row
	}
	return Matrix{Cols: cols, Rows: rows}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func indexOf(vals []string) map[string]int {
	out := make(map[string]int, len(vals))
	for i, v := range vals {
		out[v] = i
	}
	return out
}
