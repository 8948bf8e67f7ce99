package dist

import (
	"context"
	"runtime"
)

// OpenDir launches the platform file manager on a directory: explorer
// on Windows, open on macOS, xdg-open elsewhere.
func OpenDir(ctx context.Context, r Runner, path string) error {
	var name string
	switch runtime.GOOS {
	case "windows":
		name = "explorer"
	case "darwin":
		name = "open"
	default:
		name = "xdg-open"
	}

	if _, err := r.LookPath(name); err != nil {
		return err
	}

	_, err := r.Run(ctx, "", nil, name, path)
	if runtime.GOOS == "windows" {
		// explorer.exe reports a nonzero exit code even when the window
		// opens fine; its status says nothing useful.
		return nil
	}
	return err
}
