// Package cli implements the cobra-based commands for the progriv binaries.
//
// The progriv binary is the operator console: sync, generate, stats,
// feedback, account, settings and the key utilities, each defined in its
// own file within this package. The progriv-dist bundler binary has its
// own root command in dist.go. This file defines the progriv root command
// and the error/output plumbing shared by every subcommand.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, result payloads are structured JSON for machine
	// consumption. When false (default), output is styled text.
	jsonOutput bool

	// verbose enables debug-level logging with caller reporting.
	verbose bool
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main packages to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the progriv root command.
//
// The root command itself does not perform any action, it only provides
// help text and global flags. Actual functionality lives in the
// subcommands registered below.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "progriv",
		Short: "Google Ads campaign console for the Прогрів farm",
		Long: `progriv is the operator console for the Прогрів ads farm.

It pulls sites, campaign parameters and ban lists from the control
spreadsheet, generates Google Ads Editor CSV campaigns with Gemini,
and reports Editor rejections back to the sheet for moderation.

Typical session:
  progriv account set <your-tag>
  progriv sync
  progriv generate --all
  progriv feedback results.csv`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json).
		SilenceErrors: true,

		// Version is displayed when --version is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRun fires before any subcommand, once the
		// persistent flags are parsed, so the logger level matches
		// --verbose for the whole run.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLogging(verbose)
		},
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	// Register subcommands. Each is defined in its own file
	// (sync.go, generate.go, etc.) and returns a *cobra.Command.
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewStatsCommand())
	rootCmd.AddCommand(NewFeedbackCommand())
	rootCmd.AddCommand(NewAccountCommand())
	rootCmd.AddCommand(NewSettingsCommand())
	rootCmd.AddCommand(NewEncodeKeyCommand())
	rootCmd.AddCommand(NewDecodeKeyCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// It inspects errors returned by cobra commands and translates them
// into OS exit codes. CLIError values carry their own exit codes;
// other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		// errors.As would also work here, but a type assertion is
		// simpler for this single-level check.
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled. Used for trace output that helps operators understand what
// a command is doing.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// confirm asks the operator a yes/no question on the terminal.
// A --yes flag (assumeYes) short-circuits to true; a non-interactive
// stdin answers no, so piped runs never hang on the prompt.
func confirm(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	if !output.IsInputTTY() {
		return false
	}
	return promptYesNo(os.Stdout, os.Stdin, prompt)
}

// promptYesNo writes the prompt and reads one line. Only "y" and "yes"
// (any case) count as consent.
func promptYesNo(w io.Writer, r io.Reader, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
