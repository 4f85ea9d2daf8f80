package commands

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/printer"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "repoza config validate [options]",
				Description: "Loads the configuration file with environment overrides applied and reports every invalid field.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	errs := validateConfigFile(cmd.flags.ConfigPath, cmd.flags.DataDir)

	if cmd.format == "json" {
		if err := writeJSON(c.Root().Writer, struct {
			Valid  bool              `json:"valid"`
			Path   string            `json:"path"`
			Errors []validationError `json:"errors,omitempty"`
		}{len(errs) == 0, cmd.flags.ConfigPath, errs}); err != nil {
			return err
		}
	} else {
		p := printer.Ctx(ctx)
		if _, err := os.Stat(cmd.flags.ConfigPath); errors.Is(err, os.ErrNotExist) {
			p.Infof("%s not found, checking defaults", cmd.flags.ConfigPath)
		}
		for _, e := range errs {
			if e.Field != "" {
				p.Errorf("%s: %s", e.Field, e.Message)
			} else {
				p.Errorf("%s", e.Message)
			}
		}

		p.Printf("")
		if len(errs) == 0 {
			p.Successf("Configuration is valid")
			return nil
		}
		p.Errorf("%d error(s) found", len(errs))
	}

	if len(errs) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func validateConfigFile(path, dataDir string) []validationError {
	_, err := config.Load(path, dataDir)
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []validationError{{Message: err.Error()}}
	}

	out := make([]validationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, validationError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}
