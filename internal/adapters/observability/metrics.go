package observability

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forecast", Name: "pipeline_runs_total", Help: "Pipeline runs by outcome."},
		[]string{"status"}, // status: ok|error
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forecast", Name: "pipeline_stage_duration_seconds",
			Help:    "Pipeline stage duration seconds.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"stage"},
	)
	RowsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forecast", Name: "rows_dropped_total", Help: "Input rows dropped by reason."},
		[]string{"reason"},
	)
	TrainingRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "forecast", Name: "training_rows", Help: "Training set size per model."},
		[]string{"model"}, // model: occupancy|rate
	)
	ForecastMAPE = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: "forecast", Name: "arr_mape_percent", Help: "ARR MAPE over historical rows, percent."},
		[]string{"room_type"}, // "all" for the overall figure
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forecast", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "forecast", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "forecast", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
)

func Serve() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(PipelineRuns, StageDuration, RowsDropped, TrainingRows, ForecastMAPE,
		ExternalRequests, ExternalLatency, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveRun(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	PipelineRuns.WithLabelValues(status).Inc()
}

func ObserveStage(stage string, dur time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(dur.Seconds())
}

func DropRows(reason string, n int) {
	RowsDropped.WithLabelValues(reason).Add(float64(n))
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
