package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsCheck_OpenerPresent(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	}

	check := &ToolsCheck{goos: "linux"}
	result := check.Run(context.Background())

	assert.Equal(t, "Tools", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "xdg-open", result.Items[0].Label)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "/usr/bin/xdg-open", result.Items[0].Detail)
}

func TestToolsCheck_OpenerMissing(t *testing.T) {
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
	}

	check := &ToolsCheck{goos: "darwin"}
	result := check.Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, "open", result.Items[0].Label)
	assert.Equal(t, StatusWarn, result.Items[0].Status)
	assert.Contains(t, result.Items[0].Detail, "not found on PATH")
}
