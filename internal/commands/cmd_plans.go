package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
)

type PlansCmd struct {
	flags  *Flags
	app    *repoza.App
	format string
}

// NewPlansCmd creates a new plans command.
func NewPlansCmd(flags *Flags, app *repoza.App) *PlansCmd {
	return &PlansCmd{flags: flags, app: app}
}

func (cmd *PlansCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "plans",
		Usage:     "List plans and today's remaining usage",
		UsageText: "repoza plans [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

type usageJSON struct {
	AnalysesRemaining  int `json:"analyses_remaining"`
	SummariesRemaining int `json:"summaries_remaining"`
}

func (cmd *PlansCmd) run(ctx context.Context, c *cli.Command) error {
	current := cmd.app.Meter.Tier()

	var usage usageJSON
	var err error
	if usage.AnalysesRemaining, err = cmd.app.Meter.Remaining(ctx, plans.MetricAnalyses); err != nil {
		return fmt.Errorf("read usage: %w", err)
	}
	if usage.SummariesRemaining, err = cmd.app.Meter.Remaining(ctx, plans.MetricSummaries); err != nil {
		return fmt.Errorf("read usage: %w", err)
	}

	if cmd.format == "json" {
		return writeJSON(c.Root().Writer, struct {
			Current plans.Tier     `json:"current"`
			Usage   usageJSON      `json:"usage"`
			Plans   []plans.Limits `json:"plans"`
		}{current, usage, plans.All()})
	}

	out := c.Root().Writer
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\tPLAN\tPRICE\tANALYSES/DAY\tSUMMARIES/DAY\tTREE\tFEATURES")
	for _, l := range plans.All() {
		marker := ""
		if l.Tier == current {
			marker = "*"
		}
		price := "free"
		if l.MonthlyPriceUSD > 0 {
			price = fmt.Sprintf("$%d/mo", l.MonthlyPriceUSD)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker,
			l.Name,
			price,
			plans.FormatLimit(l.AnalysesPerDay),
			plans.FormatLimit(l.SummariesPerDay),
			plans.FormatLimit(l.TreeEntries),
			strings.Join(l.Features, ", "),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nToday: %s analyses and %s summaries remaining (resets 00:00 UTC)\n",
		plans.FormatLimit(usage.AnalysesRemaining),
		plans.FormatLimit(usage.SummariesRemaining),
	)
	return nil
}
