package domain

import "context"

// Input tables. Where the rows come from (CSV, XLSX, somebody's export job)
// is the adapter's concern; the pipeline only sees parsed rows.
type ReservationSource interface {
	Reservations(ctx context.Context) ([]Reservation, error)
}

type HolidaySource interface {
	Holidays(ctx context.Context) ([]Holiday, error)
}

type MaintenanceSource interface {
	Maintenance(ctx context.Context) ([]Maintenance, error)
}

// ArtifactStore persists and reads back the pipeline's output tables.
// Writes must be atomic: a reader never observes a partially written table.
type ArtifactStore interface {
	WriteDailyAggregates(ctx context.Context, rows []DailyAggregate) error
	WriteCombined(ctx context.Context, rows []CombinedRow) error
	WritePredictions(ctx context.Context, rows []PredictionRow) error

	ReadDailyAggregates(ctx context.Context) ([]DailyAggregate, error)
	ReadCombined(ctx context.Context) ([]CombinedRow, error)
}

// Cache is the pipeline's view of the serving layer's published-dataset
// cache: invalidate table keys and bump the dataset version after a publish.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Notifier tells the serving collaborator that fresh artifacts exist.
type Notifier interface {
	NotifyRefresh(ctx context.Context) error
}
