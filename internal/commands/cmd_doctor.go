package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/doctor"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/pkg/iojson"
)

type DoctorCmd struct {
	flags   *Flags
	app     *repoza.App
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags, app *repoza.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your repoza setup",
		UsageText:   "repoza doctor [options]",
		Description: "Checks configuration, the local cache database, credentials, plan usage and optional tools.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., remove expired cache entries)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, cmd.checks())

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(ctx, results)
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	// Without an app the config failed to load, and the remaining checks
	// need one.
	if cmd.app == nil || cmd.app.DB == nil {
		return []doctor.Check{
			doctor.NewConfigCheck(cmd.flags.ConfigPath, cmd.flags.DataDir),
			doctor.NewToolsCheck(),
		}
	}

	return []doctor.Check{
		doctor.NewConfigCheck(cmd.flags.ConfigPath, cmd.flags.DataDir),
		doctor.NewDatabaseCheck(cmd.app.DB.Conn(), cmd.app.KV, cmd.autofix),
		doctor.NewCredentialsCheck(cmd.app.Config, cmd.app.Tokens),
		doctor.NewUsageCheck(cmd.app.Meter),
		doctor.NewToolsCheck(),
	}
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	passed, warned, failed := doctor.Summary(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary summaryJSON     `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: failed == 0,
		Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
		Checks:  results,
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func (cmd *DoctorCmd) outputText(_ context.Context, results []doctor.Result) error {
	w := os.Stderr
	divider := styles.TextMutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.TextPrimaryBoldStyle.Render("Repoza Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintln(w, styles.TextForegroundBoldStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.TextMutedStyle.Render(item.Detail)
			}

			var icon string
			switch item.Status {
			case doctor.StatusPass:
				icon = styles.TextSuccessStyle.Render(styles.IconNotifySuccess)
			case doctor.StatusWarn:
				icon = styles.TextWarningStyle.Render(styles.IconNotifyWarning)
			case doctor.StatusFail:
				icon = styles.TextErrorStyle.Render(styles.IconNotifyError)
			}

			_, _ = fmt.Fprintf(w, "  %s %s%s\n", icon, item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	passed, warned, failed := doctor.Summary(results)
	summary := fmt.Sprintf("%s  %s  %s",
		styles.TextSuccessStyle.Render(fmt.Sprintf("%d passed", passed)),
		styles.TextWarningStyle.Render(fmt.Sprintf("%d warnings", warned)),
		styles.TextErrorStyle.Render(fmt.Sprintf("%d failed", failed)),
	)
	_, _ = fmt.Fprintln(w, summary)

	if !cmd.autofix {
		fixable := doctor.CountFixable(results)
		if fixable > 0 {
			_, _ = fmt.Fprintln(w)
			hint := styles.TextMutedStyle.Render(fmt.Sprintf("Run 'repoza doctor --autofix' to fix %d issue(s)", fixable))
			_, _ = fmt.Fprintln(w, hint)
		}
	}

	if failed > 0 {
		return cli.Exit("", 1)
	}

	return nil
}
