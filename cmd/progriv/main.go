// Package main is the entry point for the progriv operator console.
//
// The binary delegates all functionality to the internal/cli package,
// which defines the cobra commands (sync, generate, stats, feedback,
// account, settings, encode-key, decode-key).
//
// Build-time variables (version, commit, date) are injected via ldflags
// by the release process. During development they default to "dev",
// "none", and "unknown" respectively.
package main

import (
	"github.com/joho/godotenv"

	"github.com/progriv/progriv/internal/cli"
)

// version, commit, and date are set at build time via ldflags. They
// provide binary identification for the --version flag output.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load a .env file when one is present. Developers use it to set
	// PROGRIV_* overrides without touching settings.json; a missing
	// file is the normal case and not an error.
	_ = godotenv.Load()

	// Inject build-time version info into the CLI package. This
	// decouples the build system (ldflags) from the CLI framework.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
