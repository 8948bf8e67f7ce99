// icon.go embeds the .ico asset as a Windows resource in the staged
// entry package. Two embedders are supported, probed in order:
//
//	rsrc    -ico bundle_icon.ico -o resource.syso
//	windres -i app.rc -o resource.syso   (after generating app.rc)
//
// The toolchain links any .syso file found in the package directory, so
// dropping the generated resource next to the staged main package is
// all it takes for the executable to get its icon. When neither tool is
// on PATH the bundler warns and continues: the icon assets still ship
// inside the payload, only the executable's own icon is missing.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Generated file names inside the staged entry package.
const (
	iconCopyFileName     = "bundle_icon.ico"
	iconScript           = "app.rc"
	iconResourceFileName = "resource.syso"
)

// ErrNoIconTool reports that neither rsrc nor windres is on PATH.
// Callers treat this as a warning, not a failure.
var ErrNoIconTool = errors.New("no icon resource tool on PATH (install rsrc or windres to embed the executable icon)")

// EmbedIcon generates a Windows icon resource in the staged entry
// package. The .ico is first copied into the package directory so both
// tools work with short relative paths, then the first available tool
// is invoked with the staged directory as working directory.
//
// Returns the name of the tool used, or ErrNoIconTool when neither is
// installed. Any other error means a tool was found but failed, which
// is fatal: a present-but-broken embedder points at a malformed icon
// or toolchain problem the operator should see.
func EmbedIcon(ctx context.Context, r Runner, stagedEntryDir, icoPath string) (string, error) {
	if err := copyFile(icoPath, filepath.Join(stagedEntryDir, iconCopyFileName)); err != nil {
		return "", fmt.Errorf("failed to copy icon into staged package: %w", err)
	}

	if _, err := r.LookPath("rsrc"); err == nil {
		_, err := r.Run(ctx, stagedEntryDir, nil,
			"rsrc", "-ico", iconCopyFileName, "-o", iconResourceFileName)
		if err != nil {
			return "", fmt.Errorf("rsrc failed: %w", err)
		}
		return "rsrc", nil
	}

	if _, err := r.LookPath("windres"); err == nil {
		// windres consumes a resource script, not the icon directly.
		// Resource id 100 is arbitrary; Windows shows the first icon
		// resource it finds.
		script := fmt.Sprintf("100 ICON %q\n", iconCopyFileName)
		if err := os.WriteFile(filepath.Join(stagedEntryDir, iconScript), []byte(script), 0o644); err != nil {
			return "", fmt.Errorf("failed to write resource script: %w", err)
		}
		_, err := r.Run(ctx, stagedEntryDir, nil,
			"windres", "-i", iconScript, "-o", iconResourceFileName)
		if err != nil {
			return "", fmt.Errorf("windres failed: %w", err)
		}
		return "windres", nil
	}

	return "", ErrNoIconTool
}
