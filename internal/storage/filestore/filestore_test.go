package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hotel_forecast/internal/domain"
	"hotel_forecast/internal/storage/filestore"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func TestReservations_CSV(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "res.csv", strings.Join([]string{
		"Room_Number,Room_Type,Arrangement,Arrival_Date,Depart_Date,Room_Rate,Segment",
		"101,DLX,BB,2025-03-01,2025-03-03,\"1,250.50\",FIT",
		"102,STE,HB,2025-03-01 14:00:00,2025-03-02,300,COMP",
		"103,DLX,BB,not-a-date,2025-03-02,100,FIT",
		"104,DLX,BB,2025-03-01,,100,FIT",
	}, "\n"))

	s := filestore.New(p, "", "", dir)
	rs, err := s.Reservations(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("len = %d, want 2 (bad-date rows dropped)", len(rs))
	}
	r := rs[0]
	if r.RoomNumber != "101" || !r.Arrival.Equal(day(2025, time.March, 1)) || !r.Departure.Equal(day(2025, time.March, 3)) {
		t.Fatalf("unexpected row: %+v", r)
	}
	if r.NightlyRate == nil || *r.NightlyRate != 1250.50 {
		t.Fatalf("thousands separator not handled: %+v", r.NightlyRate)
	}
	if !rs[1].Arrival.Equal(day(2025, time.March, 1)) {
		t.Fatalf("datetime arrival must truncate to the date: %v", rs[1].Arrival)
	}
}

func TestHolidays_MissingFileDegrades(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New("unused", filepath.Join(dir, "absent.csv"), "", dir)
	hs, err := s.Holidays(context.Background())
	if err != nil || hs != nil {
		t.Fatalf("missing holiday table must degrade to empty: %v %v", hs, err)
	}
}

func TestHolidays_KindParsing(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "hol.csv", strings.Join([]string{
		"Date,Kind",
		"2025-01-01,National",
		"2025-01-02,Joint Holiday",
		"2025-01-03,school",
		"2025-01-04,whatever",
		"2025-01-05,Fasting",
	}, "\n"))
	s := filestore.New("unused", p, "", dir)
	hs, err := s.Holidays(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(hs) != 4 {
		t.Fatalf("len = %d, want 4 (unknown kind dropped)", len(hs))
	}
	if hs[0].Kind != domain.KindNational || hs[1].Kind != domain.KindJoint || hs[2].Kind != domain.KindSchool {
		t.Fatalf("kinds mangled: %+v", hs)
	}
}

func TestMaintenance_Optional(t *testing.T) {
	s := filestore.New("unused", "", "", t.TempDir())
	ms, err := s.Maintenance(context.Background())
	if err != nil || ms != nil {
		t.Fatalf("unset maintenance path must be empty: %v %v", ms, err)
	}
}

func TestArtifactRoundTrip_DailyAggregates(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New("unused", "", "", dir)
	in := []domain.DailyAggregate{{
		Date: day(2025, time.March, 1), RoomType: "Deluxe", Arrangement: "BB",
		AvgRoomRate: 123.45, OccupancyRate: 0.75,
		RoomsSold: 6, RoomsBlocked: 1, RoomsMaintenance: 1, Inventory: 10, Available: 8,
		NationalHoliday: true, Weekend: false, SchoolHoliday: true,
	}}
	if err := s.WriteDailyAggregates(context.Background(), in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := s.ReadDailyAggregates(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	got := out[0]
	if !got.Date.Equal(in[0].Date) || got.RoomType != "Deluxe" || got.AvgRoomRate != 123.45 ||
		got.RoomsSold != 6 || got.Available != 8 || !got.NationalHoliday || !got.SchoolHoliday {
		t.Fatalf("round trip mangled: %+v", got)
	}
}

func TestArtifactRoundTrip_Combined(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New("unused", "", "", dir)
	in := []domain.CombinedRow{
		{
			Date: day(2025, time.March, 1), RoomType: "Deluxe",
			ActualRate: ptr(100.0), ActualOcc: ptr(0.5),
			ForecastRate: 100, ForecastOcc: 0.5,
			ErrRate: ptr(0.0), ErrOcc: ptr(0.0),
		},
		{
			Date: day(2026, time.January, 1), RoomType: "Suite",
			ForecastRate: 250, ForecastOcc: 0.6, BlockLength: 2, Bridge: true,
		},
	}
	if err := s.WriteCombined(context.Background(), in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := s.ReadCombined(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].IsForecast() {
		t.Fatalf("history row lost its actuals: %+v", out[0])
	}
	if !out[1].IsForecast() {
		t.Fatalf("forecast row grew actuals: %+v", out[1])
	}
	if out[1].ActualRate != nil || out[1].ErrRate != nil {
		t.Fatalf("empty cells must read back as nil")
	}
	if out[1].BlockLength != 2 || !out[1].Bridge {
		t.Fatalf("calendar fields mangled: %+v", out[1])
	}
}

func TestWriteAtomic_NoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New("unused", "", "", dir)
	if err := s.WriteDailyAggregates(context.Background(), nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, filestore.DailyAggregatesFile)); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestWritePredictions_Header(t *testing.T) {
	dir := t.TempDir()
	s := filestore.New("unused", "", "", dir)
	rows := []domain.PredictionRow{{
		Date: day(2026, time.January, 1), RoomType: "Deluxe", Arrangement: "BB",
		Occupancy: 0.6, PredictedRate: 150, Month: 1, DayOfMonth: 1,
	}}
	if err := s.WritePredictions(context.Background(), rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, filestore.PredictionsFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d", len(lines))
	}
	for _, col := range []string{"Distance_to_Holiday", "Occupancy Rate", "ARR_pred"} {
		if !strings.Contains(lines[0], col) {
			t.Fatalf("header missing %q: %s", col, lines[0])
		}
	}
}
