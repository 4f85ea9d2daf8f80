package plans

import (
	"context"
	"errors"
	"fmt"
)

// Metered actions, counted per UTC day.
const (
	MetricAnalyses  = "analyses"
	MetricSummaries = "summaries"
)

var ErrQuotaExceeded = errors.New("daily quota exceeded")

// Counter stores daily usage counts. It may be shared by several processes,
// so the limit check and the increment happen in one step on its side.
type Counter interface {
	Today(ctx context.Context, metric string) (int, error)
	// IncrementWithin records one use of metric when fewer than limit are
	// recorded today and returns the new total. When the limit is reached it
	// records nothing and returns the current total with ok false. A negative
	// limit means unlimited.
	IncrementWithin(ctx context.Context, metric string, limit int) (count int, ok bool, err error)
}

// QuotaError describes which limit was hit. It unwraps to ErrQuotaExceeded.
type QuotaError struct {
	Tier   Tier
	Metric string
	Limit  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s plan allows %d %s per day", e.Tier, e.Limit, e.Metric)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// Meter enforces a tier's daily quotas against a Counter.
type Meter struct {
	tier    Tier
	counter Counter
}

func NewMeter(t Tier, c Counter) *Meter {
	return &Meter{tier: t, counter: c}
}

// Tier returns the tier the meter enforces.
func (m *Meter) Tier() Tier { return m.tier }

// Use records one use of metric and returns today's total. When the quota is
// already spent nothing is recorded and a *QuotaError is returned. The read
// through Today only skips a write when the quota is visibly spent; the
// counter's own check decides when two processes race for the last use.
func (m *Meter) Use(ctx context.Context, metric string) (int, error) {
	l, err := Lookup(m.tier)
	if err != nil {
		return 0, err
	}

	var (
		limit int
		fits  func(Tier, int) bool
	)
	switch metric {
	case MetricAnalyses:
		limit, fits = l.AnalysesPerDay, CanAnalyze
	case MetricSummaries:
		limit, fits = l.SummariesPerDay, CanSummarize
	default:
		return 0, fmt.Errorf("unknown metric %q", metric)
	}

	used, err := m.counter.Today(ctx, metric)
	if err != nil {
		return 0, err
	}
	if !fits(m.tier, used) {
		return used, &QuotaError{Tier: m.tier, Metric: metric, Limit: limit}
	}

	count, ok, err := m.counter.IncrementWithin(ctx, metric, limit)
	if err != nil {
		return 0, err
	}
	if !ok {
		return count, &QuotaError{Tier: m.tier, Metric: metric, Limit: limit}
	}
	return count, nil
}

// Remaining returns how many uses of metric are left today, or Unlimited.
func (m *Meter) Remaining(ctx context.Context, metric string) (int, error) {
	l, err := Lookup(m.tier)
	if err != nil {
		return 0, err
	}

	limit := l.AnalysesPerDay
	if metric == MetricSummaries {
		limit = l.SummariesPerDay
	}
	if limit == Unlimited {
		return Unlimited, nil
	}

	used, err := m.counter.Today(ctx, metric)
	if err != nil {
		return 0, err
	}
	return max(limit-used, 0), nil
}
