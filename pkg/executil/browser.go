package executil

import (
	"context"
	"runtime"
)

// OpenCommand returns the program, and any leading arguments, that opens a
// URL in the default browser on goos.
func OpenCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// OpenURL opens url in the user's browser.
func OpenURL(ctx context.Context, e Executor, url string) error {
	name, args := OpenCommand(runtime.GOOS)
	_, err := e.Run(ctx, name, append(args, url)...)
	return err
}
