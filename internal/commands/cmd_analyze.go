package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/logging"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/printer"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/internal/tui"
	"github.com/Meet0105/repoza-sub001/internal/tui/jsoncolor"
	"github.com/Meet0105/repoza-sub001/pkg/iojson"
)

const defaultWidth = 80

type AnalyzeCmd struct {
	flags     *Flags
	app       *repoza.App
	format    string
	summarize bool
}

// NewAnalyzeCmd creates a new analyze command.
func NewAnalyzeCmd(flags *Flags, app *repoza.App) *AnalyzeCmd {
	return &AnalyzeCmd{flags: flags, app: app}
}

func (cmd *AnalyzeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a GitHub repository",
		UsageText: "repoza analyze [options] <owner/name | url>",
		Description: `Fetches repository metadata, README and file tree. README and tree
failures are reported as warnings; only a metadata failure is fatal.

Every run counts against the plan's daily analysis quota.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "summarize",
				Aliases:     []string{"s"},
				Usage:       "add an AI summary (requires ANTHROPIC_API_KEY and a plan with summaries)",
				Destination: &cmd.summarize,
			},
		},
		Action: cmd.run,
	})
	return app
}

// analyzeResult is the structured result of one analysis. Summary is null
// when not requested or when summarizing failed.
type analyzeResult struct {
	Success  bool             `json:"success"`
	Detail   string           `json:"detail"`
	Analysis *github.Analysis `json:"analysis"`
	Summary  *string          `json:"summary"`
}

func (cmd *AnalyzeCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return cli.Exit("expected exactly one repository argument", 1)
	}

	ref, err := github.ParseRef(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	ctx = logging.WithRepo(ctx, ref.String())

	res := cmd.analyze(ctx, ref)

	if cmd.format == "json" {
		if err := writeJSON(c.Root().Writer, res); err != nil {
			return err
		}
	} else {
		cmd.outputText(ctx, c.Root().Writer, res)
	}

	if !res.Success {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *AnalyzeCmd) analyze(ctx context.Context, ref github.Ref) analyzeResult {
	if _, err := cmd.app.Meter.Use(ctx, plans.MetricAnalyses); err != nil {
		return analyzeResult{Detail: err.Error()}
	}

	a, err := cmd.app.GitHub.Analyze(ctx, ref)
	if err != nil {
		log.Warn().Ctx(ctx).Err(err).Msg("analysis failed")
		return analyzeResult{Detail: describeGitHubError(err)}
	}

	if a.Tree != nil {
		shown, full := plans.WithinTreeLimit(cmd.app.Config.Tier(), len(a.Tree.Entries))
		if !full {
			a.Tree.Entries = a.Tree.Entries[:shown]
			a.Warnings = append(a.Warnings, fmt.Sprintf("tree limited to %d entries on the %s plan", shown, cmd.app.Config.Tier()))
		}
	}

	res := analyzeResult{Success: true, Detail: "analyzed " + ref.String(), Analysis: &a}
	if a.Cached {
		res.Detail += " (cached)"
	}

	if cmd.summarize {
		summary, err := cmd.summary(ctx, a)
		if err != nil {
			a.Warnings = append(a.Warnings, "summary: "+err.Error())
		} else {
			res.Summary = &summary
		}
	}

	return res
}

func (cmd *AnalyzeCmd) summary(ctx context.Context, a github.Analysis) (string, error) {
	if !cmd.app.AIConfigured() {
		return "", errors.New("no AI key configured")
	}
	if _, err := cmd.app.Meter.Use(ctx, plans.MetricSummaries); err != nil {
		return "", err
	}
	return cmd.app.AI.Summarize(ctx, a)
}

func (cmd *AnalyzeCmd) outputText(ctx context.Context, w io.Writer, res analyzeResult) {
	p := printer.Ctx(ctx)
	if !res.Success {
		p.Errorf("%s", res.Detail)
		return
	}

	summary := ""
	if res.Summary != nil {
		summary = *res.Summary
	}
	_, _ = fmt.Fprintln(w, tui.RenderReport(*res.Analysis, summary, terminalWidth()))

	for _, warning := range res.Analysis.Warnings {
		p.Warnf("%s", warning)
	}
	p.Successf("%s", res.Detail)
}

func describeGitHubError(err error) string {
	switch {
	case errors.Is(err, github.ErrNotFound):
		return "repository not found"
	case errors.Is(err, github.ErrRateLimited):
		return "GitHub rate limit reached; set GITHUB_TOKEN or run 'repoza signin'"
	case errors.Is(err, github.ErrUnauthorized):
		return "GitHub rejected the token"
	default:
		return "could not reach server: " + err.Error()
	}
}

// writeJSON colorizes output for terminals and writes plain JSON otherwise.
func writeJSON(w io.Writer, v any) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, jsoncolor.Colorize(data))
		return err
	}
	return iojson.WriteWith(w, os.Stderr, v)
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
