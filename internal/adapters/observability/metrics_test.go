package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotel_forecast/internal/adapters/observability"
)

// scrape records samples into the package collectors and reads them back
// through MetricsHandler(InitRegistry()) — the same composition Serve mounts
// on METRICS_ADDR.
func scrape(t *testing.T) string {
	t.Helper()
	mh := observability.MetricsHandler(observability.InitRegistry())
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	return string(body)
}

func TestMetricsRegistryAndHandler(t *testing.T) {
	// record one sample so counters are non-zero
	observability.ObserveStage("aggregate", 12*time.Millisecond)
	observability.DropRows("unparseable_date", 3)
	observability.ObserveRun(nil)

	out := scrape(t)
	if !strings.Contains(out, "forecast_pipeline_runs_total") {
		t.Fatalf("expected forecast_pipeline_runs_total in output")
	}
	if !strings.Contains(out, "forecast_rows_dropped_total") {
		t.Fatalf("expected forecast_rows_dropped_total in output")
	}
	if !strings.Contains(out, `forecast_pipeline_stage_duration_seconds_count{stage="aggregate"}`) {
		t.Fatalf("expected the aggregate stage histogram in output")
	}
}

func TestMetricsHandlerExportsAdapterSeries(t *testing.T) {
	observability.ObserveCache("redis", "del")
	observability.ObserveExternal("backend", "refresh", 204, 8*time.Millisecond)
	observability.TrainingRows.WithLabelValues("occupancy").Set(120)
	observability.ForecastMAPE.WithLabelValues("all").Set(12.5)

	out := scrape(t)
	for _, series := range []string{
		`forecast_cache_events_total{cache="redis",event="del"}`,
		`forecast_external_requests_total{endpoint="refresh",service="backend",status="204"}`,
		`forecast_training_rows{model="occupancy"}`,
		`forecast_arr_mape_percent{room_type="all"}`,
	} {
		if !strings.Contains(out, series) {
			t.Fatalf("expected %s in output", series)
		}
	}
}
