package doctor

import (
	"context"
	"fmt"

	"github.com/Meet0105/repoza-sub001/internal/core/plans"
)

// UsageCheck reports the active plan and today's remaining quota.
type UsageCheck struct {
	meter *plans.Meter
}

// NewUsageCheck creates a usage check.
func NewUsageCheck(meter *plans.Meter) *UsageCheck {
	return &UsageCheck{meter: meter}
}

func (c *UsageCheck) Name() string {
	return "Plan"
}

func (c *UsageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	limits, err := plans.Lookup(c.meter.Tier())
	if err != nil {
		result.Items = append(result.Items, CheckItem{Label: "tier", Status: StatusFail, Detail: err.Error()})
		return result
	}
	result.Items = append(result.Items, CheckItem{Label: "tier", Status: StatusPass, Detail: limits.Name})

	for _, metric := range []string{plans.MetricAnalyses, plans.MetricSummaries} {
		result.Items = append(result.Items, c.metricItem(ctx, limits, metric))
	}
	return result
}

func (c *UsageCheck) metricItem(ctx context.Context, limits plans.Limits, metric string) CheckItem {
	label := metric + " today"

	if metric == plans.MetricSummaries && limits.SummariesPerDay == 0 {
		return CheckItem{Label: label, Status: StatusWarn, Detail: "not included in the " + limits.Name + " plan"}
	}

	remaining, err := c.meter.Remaining(ctx, metric)
	switch {
	case err != nil:
		return CheckItem{Label: label, Status: StatusFail, Detail: err.Error()}
	case remaining == plans.Unlimited:
		return CheckItem{Label: label, Status: StatusPass, Detail: "unlimited"}
	case remaining == 0:
		return CheckItem{Label: label, Status: StatusWarn, Detail: "quota used up, resets at 00:00 UTC"}
	default:
		return CheckItem{Label: label, Status: StatusPass, Detail: fmt.Sprintf("%d remaining", remaining)}
	}
}
