package app_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"hotel_forecast/internal/app"
	"hotel_forecast/internal/domain"
)

func cleanDaily(start time.Time, n int) []domain.DailyAggregate {
	var out []domain.DailyAggregate
	for i := 0; i < n; i++ {
		out = append(out, domain.DailyAggregate{
			Date: start.AddDate(0, 0, i), RoomType: "Deluxe", Arrangement: "BB",
			AvgRoomRate: 100 + float64(i%5), OccupancyRate: 0.7,
			RoomsSold: 7, Inventory: 10, Available: 10,
		})
	}
	return out
}

func hasIssue(rep app.Report, check string) bool {
	for _, i := range rep.Issues {
		if i.Check == check {
			return true
		}
	}
	return false
}

func TestCheckQuality_CleanDataset(t *testing.T) {
	rep := app.CheckQuality(cleanDaily(day(2025, time.March, 1), 20), nil, nil)
	if !rep.Healthy() {
		t.Fatalf("clean dataset flagged unhealthy: %+v", rep.Issues)
	}
	if !math.IsNaN(rep.OverallMAPE) {
		t.Fatalf("no forecast overlap means no MAPE, got %v", rep.OverallMAPE)
	}
}

func TestCheckQuality_DateGap(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	daily = append(daily[:5], daily[7:]...) // drop two dates
	rep := app.CheckQuality(daily, nil, nil)
	if !hasIssue(rep, "continuity") {
		t.Fatalf("gap not detected: %+v", rep.Issues)
	}
}

func TestCheckQuality_InventoryDrift(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	daily[4].Inventory = 12
	rep := app.CheckQuality(daily, nil, nil)
	if !hasIssue(rep, "inventory") {
		t.Fatalf("inventory drift not detected")
	}
}

func TestCheckQuality_OccupancyAboveOneBlocks(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	daily[3].OccupancyRate = 1.2
	rep := app.CheckQuality(daily, nil, nil)
	if rep.Healthy() {
		t.Fatalf("occupancy above 1 must block")
	}
	if !hasIssue(rep, "bounds") {
		t.Fatalf("bounds issue missing: %+v", rep.Issues)
	}
}

func TestCheckQuality_SoldAboveInventoryBlocks(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	daily[3].RoomsSold = 11
	rep := app.CheckQuality(daily, nil, nil)
	if rep.Healthy() {
		t.Fatalf("oversold must block")
	}
}

func TestCheckQuality_RateOutliers(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 20)
	// push well over 5% of rows far outside the Tukey fence
	daily[2].AvgRoomRate = 5000
	daily[9].AvgRoomRate = 4000
	rep := app.CheckQuality(daily, nil, nil)
	if !hasIssue(rep, "rate_outliers") {
		t.Fatalf("outliers not detected: %+v", rep.Issues)
	}
}

func TestCheckQuality_HolidayFlagMismatch(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	holidays := []domain.Holiday{{Date: day(2025, time.March, 3), Kind: domain.KindNational}}
	rep := app.CheckQuality(daily, nil, holidays)
	if !hasIssue(rep, "holiday_flags") {
		t.Fatalf("flag mismatch not detected")
	}

	daily[2].NationalHoliday = true
	rep = app.CheckQuality(daily, nil, holidays)
	if hasIssue(rep, "holiday_flags") {
		t.Fatalf("false positive after fixing the flag: %+v", rep.Issues)
	}
}

func TestCheckQuality_RealizedMAPE(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10) // actual rate ~100
	combined := []domain.CombinedRow{
		{Date: day(2025, time.March, 2), RoomType: "Deluxe", ForecastRate: 101},  // ~0% error
		{Date: day(2025, time.March, 3), RoomType: "Deluxe", ForecastRate: 204},  // ~100% error
		{Date: day(2026, time.March, 3), RoomType: "Deluxe", ForecastRate: 999},  // no actual yet
		{Date: day(2025, time.March, 4), RoomType: "Suite", ForecastRate: 999},   // no matching actual
	}
	rep := app.CheckQuality(daily, combined, nil)
	if math.IsNaN(rep.OverallMAPE) {
		t.Fatalf("expected a realized MAPE")
	}
	if rep.OverallMAPE < 25 {
		t.Fatalf("MAPE = %v, expected the 100%%-error row to dominate", rep.OverallMAPE)
	}
	if rep.Healthy() {
		t.Fatalf("overall MAPE above threshold must block")
	}
	found := false
	for _, i := range rep.Issues {
		if i.Check == "mape" && strings.Contains(i.Detail, "Deluxe") {
			found = true
		}
	}
	if !found {
		t.Fatalf("per-room-type breach missing: %+v", rep.Issues)
	}
}

func TestCheckQuality_HistoryRowsExcludedFromMAPE(t *testing.T) {
	daily := cleanDaily(day(2025, time.March, 1), 10)
	rate := 100.0
	combined := []domain.CombinedRow{{
		Date: day(2025, time.March, 2), RoomType: "Deluxe",
		ActualRate: &rate, ForecastRate: 500, // history row, huge apparent error
	}}
	rep := app.CheckQuality(daily, combined, nil)
	if !math.IsNaN(rep.OverallMAPE) {
		t.Fatalf("history rows must not enter the MAPE, got %v", rep.OverallMAPE)
	}
}
