package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/repoza"
)

const (
	RootUsage       = "Explore and analyze GitHub repositories from the terminal"
	RootUsageText   = "repoza [global options] [owner/name] | command [command options]"
	RootDescription = `repoza fetches a repository's metadata, README and file tree and renders
them in an interactive explorer with toast notifications.

Run 'repoza' to open the explorer, or 'repoza owner/name' to open it on a
repository. Run 'repoza analyze owner/name' for scriptable output.`
)

// RegisterAll adds every subcommand and the TUI flags to root. The returned
// TuiCmd backs the default action.
func RegisterAll(root *cli.Command, flags *Flags, app *repoza.App) (*cli.Command, *TuiCmd) {
	tuiCmd := NewTuiCmd(flags, app)

	root = NewAnalyzeCmd(flags, app).Register(root)
	root = NewAICmd(flags, app).Register(root)
	root = NewSignInCmd(flags, app).Register(root)
	root = NewPlansCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)

	root.Flags = append(root.Flags, tuiCmd.Flags()...)
	return root, tuiCmd
}
