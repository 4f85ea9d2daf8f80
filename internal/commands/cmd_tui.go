package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/logging"
	"github.com/Meet0105/repoza-sub001/internal/core/notify"
	"github.com/Meet0105/repoza-sub001/internal/core/updatecheck"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/internal/tui"
	"github.com/Meet0105/repoza-sub001/pkg/profiler"
)

const updateToastDuration = 10 * time.Second

type TuiCmd struct {
	flags *Flags
	app   *repoza.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *repoza.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("REPOZA_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command. An optional
// first argument is analyzed on startup.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, logging.Component("profiler"))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/pprof/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	queue := cmd.app.NewQueue()
	defer queue.Close()

	if !cmd.flags.NoUpdate {
		go cmd.announceUpdate(ctx, queue)
	}

	opts := tui.Options{
		Queue:         queue,
		Analyzer:      cmd.app.GitHub,
		Meter:         cmd.app.Meter,
		Tier:          cmd.app.Config.Tier(),
		ToastDuration: cmd.app.ToastDuration(),
		MaxVisible:    cmd.app.Config.Notifications.MaxVisible,
		Sticky:        cmd.app.Config.Notifications.StickyKinds(),
		InitialRef:    c.Args().First(),
		Build: tui.BuildInfo{
			Version: cmd.app.Build.Version,
			Commit:  cmd.app.Build.Commit,
			Date:    cmd.app.Build.Date,
		},
	}
	if cmd.app.AIConfigured() {
		opts.Summarizer = cmd.app.AI
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}

// announceUpdate queues an info toast when a newer release exists. It runs
// off the UI goroutine; the queue is safe for concurrent use.
func (cmd *TuiCmd) announceUpdate(ctx context.Context, q *notify.Queue) {
	res, err := updatecheck.Check(ctx, cmd.app.KV, cmd.app.Build.Version)
	if err != nil || res == nil {
		return
	}
	if _, err := q.Info("Update available", res.Message(), updateToastDuration); err != nil {
		log.Debug().Err(err).Msg("update toast dropped")
	}
}
