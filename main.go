package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/commands"
	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/logging"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
	"github.com/Meet0105/repoza-sub001/internal/data/db"
	"github.com/Meet0105/repoza-sub001/internal/data/stores"
	"github.com/Meet0105/repoza-sub001/internal/printer"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, buildInfo() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

const sweepInterval = 5 * time.Minute

func buildInfo() repoza.BuildInfo {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	return repoza.BuildInfo{Version: v, Commit: c, Date: d}
}

// openDatabase opens the cache database, moving a corrupted file aside and
// starting fresh once. Everything in it can be refetched.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
		Logger:       logging.Component("db"),
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	moved, qerr := stores.QuarantineDatabase(cfg.DataDir, time.Now())
	if qerr != nil {
		return nil, fmt.Errorf("recover database: %w", qerr)
	}
	log.Warn().Err(err).Str("moved_to", moved).Msg("database corrupted, recreating")
	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		build       = buildInfo()
		app         = &repoza.App{Build: build}
		database    *db.DB
		sweepCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:        "repoza",
		Usage:       commands.RootUsage,
		UsageText:   commands.RootUsageText,
		Description: commands.RootDescription,
		Version:     build.String(),
		Flags:       commands.GlobalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/repoza.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "repoza.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Install(logger)
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))
			ctx = logging.WithCommand(ctx, c.Args().First())

			// config validate reports load errors itself.
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil && c.Args().First() == "doctor" {
				// doctor reports the field errors and runs the checks that need no app.
				log.Warn().Err(err).Msg("config invalid, running doctor without app")
				return ctx, nil
			}
			if err != nil {
				return ctx, fmt.Errorf("load config: %w\nrun 'repoza config validate' for details", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*app = *repoza.NewApp(ctx, cfg, database, build)

			sweepCtx, cancel := context.WithCancel(context.Background())
			sweepCancel = cancel
			go stores.StartSweeper(sweepCtx, app.KV, sweepInterval)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if sweepCancel != nil {
				sweepCancel()
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	root, tuiCmd := commands.RegisterAll(root, flags, app)

	// Open the TUI when no subcommand is provided. A single repository
	// argument is analyzed on startup.
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 1 {
			return fmt.Errorf("too many arguments. Run 'repoza --help' for usage")
		}
		if arg := c.Args().First(); arg != "" {
			if _, err := github.ParseRef(arg); err != nil {
				return fmt.Errorf("unknown command %q. Run 'repoza --help' for usage", arg)
			}
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
