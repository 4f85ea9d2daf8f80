package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/data/db"
)

// Usage metrics counted per calendar day.
const (
	MetricAnalyses  = plans.MetricAnalyses
	MetricSummaries = plans.MetricSummaries
)

const busyRetries = 3

// UsageStore counts metered actions per UTC day. It satisfies plans.Counter.
type UsageStore struct {
	db  *db.DB
	now func() time.Time
}

// NewUsageStore creates a usage store backed by the usage_counters table.
func NewUsageStore(db *db.DB) *UsageStore {
	return &UsageStore{db: db, now: time.Now}
}

func (s *UsageStore) day() string {
	return s.now().UTC().Format(time.DateOnly)
}

// Today returns how many times metric was recorded today.
func (s *UsageStore) Today(ctx context.Context, metric string) (int, error) {
	var count int
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT count FROM usage_counters WHERE day = ? AND metric = ?`, s.day(), metric,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage today %q: %w", metric, err)
	}
	return count, nil
}

// IncrementWithin records one use of metric today unless limit uses are
// already recorded, checking and writing in a single statement so two
// processes sharing the database cannot both take the last use. A negative
// limit is unlimited. SQLITE_BUSY is retried a few times before giving up.
func (s *UsageStore) IncrementWithin(ctx context.Context, metric string, limit int) (int, bool, error) {
	var (
		count int
		err   error
	)
	for range busyRetries {
		// The WHERE on the SELECT also keeps SQLite from parsing ON CONFLICT
		// as a join constraint.
		err = s.db.Conn().QueryRowContext(ctx, `
			INSERT INTO usage_counters (day, metric, count, updated_at)
			SELECT ?1, ?2, 1, ?3 WHERE ?4 <> 0
			ON CONFLICT (day, metric) DO UPDATE SET
				count = usage_counters.count + 1,
				updated_at = excluded.updated_at
			WHERE ?4 < 0 OR usage_counters.count < ?4
			RETURNING count`,
			s.day(), metric, s.now().UnixNano(), limit,
		).Scan(&count)
		if !IsBusyError(err) {
			break
		}
	}

	switch {
	case err == nil:
		return count, true, nil
	case errors.Is(err, sql.ErrNoRows):
		// Nothing was written: the limit is reached.
		used, terr := s.Today(ctx, metric)
		return used, false, terr
	default:
		return 0, false, fmt.Errorf("usage increment %q: %w", metric, err)
	}
}
