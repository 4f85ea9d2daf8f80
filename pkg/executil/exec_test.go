package executil

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	e := &RealExecutor{}
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		out, err := e.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := e.Run(ctx, "nonexistent-command-12345")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec nonexistent-command-12345")
	})

	t.Run("failure keeps exit error", func(t *testing.T) {
		_, err := e.Run(ctx, "sh", "-c", "echo 'no display' >&2; exit 3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no display")

		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.ExitCode())
	})

	t.Run("output is capped", func(t *testing.T) {
		out, err := e.Run(ctx, "sh", "-c", "printf '%0600d' 0")
		require.NoError(t, err)
		assert.Len(t, out, maxOutputLen)
		assert.Equal(t, strings.Repeat("0", maxOutputLen), string(out))
	})
}

func TestRecordingExecutor_Run(t *testing.T) {
	t.Run("records commands", func(t *testing.T) {
		e := &RecordingExecutor{}
		ctx := context.Background()

		_, _ = e.Run(ctx, "xdg-open", "https://example.com")
		_, _ = e.Run(ctx, "open", "https://example.org")

		require.Len(t, e.Commands, 2)
		assert.Equal(t, "xdg-open", e.Commands[0].Cmd)
		assert.Equal(t, []string{"https://example.com"}, e.Commands[0].Args)
	})

	t.Run("returns configured output and error", func(t *testing.T) {
		expectedErr := errors.New("command failed")
		e := &RecordingExecutor{
			Outputs: map[string][]byte{"open": []byte("output")},
			Errors:  map[string]error{"xdg-open": expectedErr},
		}
		ctx := context.Background()

		out, err := e.Run(ctx, "open")
		require.NoError(t, err)
		assert.Equal(t, []byte("output"), out)

		_, err = e.Run(ctx, "xdg-open")
		assert.Equal(t, expectedErr, err)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		e := &RecordingExecutor{}
		_, _ = e.Run(context.Background(), "echo", "hello")
		require.Len(t, e.Commands, 1)

		e.Reset()
		assert.Empty(t, e.Commands)
	})
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{goos: "darwin", name: "open"},
		{goos: "linux", name: "xdg-open"},
		{goos: "freebsd", name: "xdg-open"},
		{goos: "windows", name: "rundll32", args: []string{"url.dll,FileProtocolHandler"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := OpenCommand(tt.goos)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestOpenURL(t *testing.T) {
	e := &RecordingExecutor{}

	err := OpenURL(context.Background(), e, "https://github.com/login/oauth/authorize?state=x")
	require.NoError(t, err)

	name, _ := OpenCommand(runtime.GOOS)
	require.Len(t, e.Commands, 1)
	assert.Equal(t, name, e.Commands[0].Cmd)
	assert.Equal(t, "https://github.com/login/oauth/authorize?state=x", e.Commands[0].Args[len(e.Commands[0].Args)-1])
}
