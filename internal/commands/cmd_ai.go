package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/printer"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
)

type AICmd struct {
	flags  *Flags
	app    *repoza.App
	format string
}

// NewAICmd creates the ai command group.
func NewAICmd(flags *Flags, app *repoza.App) *AICmd {
	return &AICmd{flags: flags, app: app}
}

func (cmd *AICmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "ai",
		Usage: "AI provider commands",
		Commands: []*cli.Command{
			{
				Name:        "check",
				Usage:       "Verify the configured AI key and model",
				UsageText:   "repoza ai check [options]",
				Description: "Sends a minimal prompt to the configured model. Any successful reply counts as valid.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.check,
			},
		},
	})
	return app
}

type aiCheckResult struct {
	Success   bool   `json:"success"`
	Detail    string `json:"detail"`
	Model     string `json:"model"`
	LatencyMS int64  `json:"latency_ms"`
}

func (cmd *AICmd) check(ctx context.Context, c *cli.Command) error {
	r := cmd.app.AI.Validate(ctx)
	res := aiCheckResult{
		Success:   r.Valid,
		Detail:    r.Detail,
		Model:     r.Model,
		LatencyMS: r.Latency.Milliseconds(),
	}

	if cmd.format == "json" {
		if err := writeJSON(c.Root().Writer, res); err != nil {
			return err
		}
	} else {
		p := printer.Ctx(ctx)
		if res.Success {
			p.Successf("%s: %s", res.Model, res.Detail)
		} else {
			p.Errorf("%s: %s", res.Model, res.Detail)
		}
	}

	if !res.Success {
		return cli.Exit("", 1)
	}
	return nil
}
