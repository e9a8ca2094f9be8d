package forecast

import (
	"sort"
	"time"

	"hotel_forecast/internal/domain"
)

// Combine merges historical actuals and future predictions into the single
// table the serving layer reads. Historical rows copy their actuals into the
// forecast fields and force both error fields to 0; forecast rows carry nil
// actuals and nil errors (not yet observed). Every rate row is left-joined
// to the occupancy forecast on date, one occupancy per date broadcast across
// room types. Output order — date ascending, then room type — is part of the
// external contract.
//
// Feeding pure history back through with no forecasts reproduces the
// historical rows unchanged.
func Combine(history []domain.DailyAggregate, occ []domain.OccupancyForecast, rates []domain.RateForecast) []domain.CombinedRow {
	out := make([]domain.CombinedRow, 0, len(history)+len(rates))

	for _, h := range history {
		out = append(out, domain.CombinedRow{
			Date:          h.Date,
			RoomType:      h.RoomType,
			ActualRate:    f64(h.AvgRoomRate),
			ActualOcc:     f64(h.OccupancyRate),
			ForecastRate:  h.AvgRoomRate,
			ForecastOcc:   h.OccupancyRate,
			ErrRate:       f64(0),
			ErrOcc:        f64(0),
			Holiday:       h.NationalHoliday,
			Weekend:       h.Weekend,
			SchoolHoliday: h.SchoolHoliday,
			Event:         h.Event,
		})
	}

	occByDate := make(map[time.Time]domain.OccupancyForecast, len(occ))
	for _, o := range occ {
		occByDate[dateKey(o.Date)] = o
	}
	for _, r := range rates {
		fOcc := r.PredictedOccupancy
		if o, ok := occByDate[dateKey(r.Date)]; ok {
			fOcc = o.Occupancy
		}
		out = append(out, domain.CombinedRow{
			Date:          r.Date,
			RoomType:      r.RoomType,
			ForecastRate:  r.Rate,
			ForecastOcc:   fOcc,
			Holiday:       r.Holiday,
			Weekend:       r.Weekend,
			SchoolHoliday: r.SchoolHoliday,
			Event:         r.Event,
			BlockLength:   r.BlockLength,
			Bridge:        r.Bridge,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].RoomType < out[j].RoomType
	})
	return out
}

func f64(v float64) *float64 { return &v }
