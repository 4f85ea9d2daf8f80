package doctor

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/Meet0105/repoza-sub001/pkg/executil"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// ToolsCheck verifies that optional external tools are available on $PATH.
type ToolsCheck struct {
	goos string
}

// NewToolsCheck creates a new tools check for the running platform.
func NewToolsCheck() *ToolsCheck {
	return &ToolsCheck{goos: runtime.GOOS}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	// The browser opener is only used by sign-in, which falls back to
	// printing the URL.
	name, _ := executil.OpenCommand(c.goos)
	if path, err := lookPathFunc(name); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  name,
			Status: StatusWarn,
			Detail: "not found on PATH (signin will print the URL instead)",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  name,
			Status: StatusPass,
			Detail: path,
		})
	}

	return result
}
