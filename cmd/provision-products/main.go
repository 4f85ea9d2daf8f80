// Command provision-products creates the paid plans as products and prices in
// Paddle. It is run once per environment by an operator.
//
//	PADDLE_API_KEY=... provision-products --sandbox
//	provision-products --dry-run -f catalog.json
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/billing"
	"github.com/Meet0105/repoza-sub001/pkg/iojson"
	"github.com/Meet0105/repoza-sub001/pkg/logutils"
)

func main() {
	var (
		apiKey   string
		sandbox  bool
		dryRun   bool
		logLevel string
		catalog  = iojson.FileReader[billing.Catalog]{Validate: billing.Catalog.Validate}
	)

	cmd := &cli.Command{
		Name:      "provision-products",
		Usage:     "Create repoza plans as Paddle products and prices",
		UsageText: "provision-products [options]",
		Description: `Creates one product per paid plan and a monthly and yearly price in
each supported currency. Without --file the catalog is derived from the
built-in plan table. The report of created IDs is written to stdout as JSON.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "api-key",
				Usage:       "Paddle API key",
				Sources:     cli.EnvVars("PADDLE_API_KEY"),
				Destination: &apiKey,
			},
			&cli.BoolFlag{
				Name:        "sandbox",
				Usage:       "use the Paddle sandbox environment",
				Value:       true,
				Destination: &sandbox,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "print the catalog matrix without calling Paddle",
				Destination: &dryRun,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Value:       "info",
				Destination: &logLevel,
			},
			catalog.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger, closer, err := logutils.New(logLevel, "")
			if err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			defer closer()
			log.Logger = logger

			cat := billing.DefaultCatalog()
			if c.IsSet("file") {
				if cat, err = catalog.Read(); err != nil {
					return fmt.Errorf("read catalog: %w", err)
				}
			}

			var backend billing.Backend
			if !dryRun {
				if backend, err = billing.NewPaddleBackend(apiKey, sandbox); err != nil {
					return err
				}
			}

			p := billing.NewProvisioner(backend,
				billing.WithDryRun(dryRun),
				billing.WithProvisionLogger(logger.With().Str("cmp", "billing").Logger()),
			)

			report, err := p.Provision(ctx, cat)
			if werr := iojson.Write(report); werr != nil {
				return werr
			}
			if err != nil {
				return cli.Exit(iojson.MarshalError(err.Error(), map[string]any{"created": len(report.Created)}), 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
