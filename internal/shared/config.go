package shared

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	MetricsAddr string

	ReservationsPath string
	HolidaysPath     string
	MaintenancePath  string
	OutputDir        string

	Inventory        map[string]int
	ExcludedSegments []string
	TargetYear       int
	Trees            int
	MinLeaf          int
	Seed             int64
	Workers          int

	RedisAddr string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration

	BackendBase     string
	RefreshInterval time.Duration
}

func Load() Config {
	// .env is a local-dev convenience; real deployments set the environment.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		ReservationsPath: env("RESERVATIONS_PATH", ""),
		HolidaysPath:     env("HOLIDAYS_PATH", ""),
		MaintenancePath:  env("MAINTENANCE_PATH", ""),
		OutputDir:        env("OUTPUT_DIR", "data"),

		Inventory:        inventory(os.Getenv("INVENTORY_JSON")),
		ExcludedSegments: split(env("EXCLUDED_SEGMENTS", "COMP,HU")),
		TargetYear:       atoi("TARGET_YEAR", 0),
		Trees:            atoi("FOREST_TREES", 400),
		MinLeaf:          atoi("FOREST_MIN_LEAF", 2),
		Seed:             int64(atoi("FOREST_SEED", 0)),
		Workers:          atoi("FOREST_WORKERS", 0),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		BackendBase:     env("BACKEND_BASE_URL", ""),
		RefreshInterval: time.Duration(atoi("REFRESH_INTERVAL_SECONDS", 0)) * time.Second,
	}
	if c.ReservationsPath == "" {
		log.Fatal().Msg("RESERVATIONS_PATH is required")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// inventory parses {"Deluxe": 10, ...}; empty or malformed means nil, and the
// aggregator falls back to counting distinct rooms seen per type.
func inventory(raw string) map[string]int {
	if raw == "" {
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		log.Warn().Err(err).Msg("INVENTORY_JSON is malformed, falling back to observed rooms")
		return nil
	}
	return m
}

func split(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
