// Package plans defines the subscription tiers and their usage limits.
package plans

import (
	"errors"
	"fmt"
	"strings"
)

// Tier names a subscription plan.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
	TierTeam Tier = "team"
)

// Unlimited marks a limit that is never reached.
const Unlimited = -1

// ErrUnknownTier is returned for a tier outside the static table.
var ErrUnknownTier = errors.New("unknown plan tier")

// Limits are the per-tier quotas. Daily counters reset at UTC midnight.
type Limits struct {
	Tier            Tier     `json:"tier"`
	Name            string   `json:"name"`
	AnalysesPerDay  int      `json:"analyses_per_day"`
	SummariesPerDay int      `json:"summaries_per_day"`
	TreeEntries     int      `json:"tree_entries"`
	MonthlyPriceUSD int      `json:"monthly_price_usd"`
	Features        []string `json:"features"`
}

var table = []Limits{
	{
		Tier:            TierFree,
		Name:            "Free",
		AnalysesPerDay:  10,
		SummariesPerDay: 0,
		TreeEntries:     200,
		Features:        []string{"repository metadata", "README rendering"},
	},
	{
		Tier:            TierPro,
		Name:            "Pro",
		AnalysesPerDay:  200,
		SummariesPerDay: 50,
		TreeEntries:     5000,
		MonthlyPriceUSD: 9,
		Features:        []string{"repository metadata", "README rendering", "AI summaries", "full file tree"},
	},
	{
		Tier:            TierTeam,
		Name:            "Team",
		AnalysesPerDay:  Unlimited,
		SummariesPerDay: Unlimited,
		TreeEntries:     Unlimited,
		MonthlyPriceUSD: 29,
		Features:        []string{"repository metadata", "README rendering", "AI summaries", "full file tree", "shared workspaces"},
	},
}

// All returns every tier in ascending order of capability.
func All() []Limits {
	out := make([]Limits, len(table))
	copy(out, table)
	return out
}

// ParseTier validates a tier name, ignoring case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	for _, l := range table {
		if l.Tier == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Lookup returns the limits for a tier.
func Lookup(t Tier) (Limits, error) {
	for _, l := range table {
		if l.Tier == t {
			return l, nil
		}
	}
	return Limits{}, fmt.Errorf("%w: %q", ErrUnknownTier, t)
}

func within(limit, used int) bool {
	return limit == Unlimited || used < limit
}

// CanAnalyze reports whether another analysis fits in today's quota.
func CanAnalyze(t Tier, usedToday int) bool {
	l, err := Lookup(t)
	if err != nil {
		return false
	}
	return within(l.AnalysesPerDay, usedToday)
}

// CanSummarize reports whether another AI summary fits in today's quota.
func CanSummarize(t Tier, usedToday int) bool {
	l, err := Lookup(t)
	if err != nil {
		return false
	}
	return within(l.SummariesPerDay, usedToday)
}

// WithinTreeLimit clamps n to the number of tree entries the tier may show.
// The second value is true when n was not reduced.
func WithinTreeLimit(t Tier, n int) (int, bool) {
	l, err := Lookup(t)
	if err != nil {
		return 0, n == 0
	}
	if l.TreeEntries == Unlimited || n <= l.TreeEntries {
		return n, true
	}
	return l.TreeEntries, false
}

// FormatLimit renders a limit for display.
func FormatLimit(n int) string {
	if n == Unlimited {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
