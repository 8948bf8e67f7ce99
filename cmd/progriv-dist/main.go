// Package main is the entry point for the progriv-dist bundler.
//
// The binary runs the packaging pipeline for the checkout it is started
// in: toolchain check, isolated build environment, dependency install,
// artifact cleanup, bundling, and opening the output directory. All
// logic lives in internal/cli and internal/dist.
package main

import (
	"github.com/joho/godotenv"

	"github.com/progriv/progriv/internal/cli"
)

// version, commit, and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// PROGRIV_NO_PAUSE and other overrides may come from a .env file
	// during development. Missing files are ignored.
	_ = godotenv.Load()

	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// ExecuteDist differs from Execute in one way: on failure it
	// pauses an interactive console before exiting, so double-click
	// launches keep the error on screen.
	rootCmd := cli.NewDistRootCommand()
	cli.ExecuteDist(rootCmd)
}
