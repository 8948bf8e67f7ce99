// Package cli — dist.go implements the root command of the progriv-dist
// bundler binary.
//
// progriv-dist is what an operator double-clicks (or CI runs) inside the
// module checkout: it reads the bundle descriptor, runs the build
// pipeline (toolchain check, isolated environment, dependencies, clean,
// bundle, open), and reports each step. On failure it pauses an
// interactive console before exiting so the error stays readable when
// the command was launched from a file manager.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/bundle"
	"github.com/progriv/progriv/internal/dist"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// noPauseEnvVar suppresses the exit pause like --no-pause does. CI
// images export it once instead of threading the flag through scripts.
const noPauseEnvVar = "PROGRIV_NO_PAUSE"

// distNoPause is the effective no-pause switch of the current run,
// read by ExecuteDist after a failed command.
var distNoPause bool

// distFlags holds the flag values for the progriv-dist command.
type distFlags struct {
	config   string // --config: bundle descriptor path
	noPause  bool   // --no-pause: never wait for Enter on failure
	skipOpen bool   // --skip-open: do not open dist/ when done
}

// NewDistRootCommand creates the progriv-dist root command. Unlike the
// progriv console it has no subcommands: the binary does one thing.
func NewDistRootCommand() *cobra.Command {
	flags := &distFlags{}

	rootCmd := &cobra.Command{
		Use:   "progriv-dist",
		Short: "Bundle the campaign console into a single Windows executable",
		Long: `progriv-dist builds the distributable executable described by the
bundle descriptor in the current directory.

The pipeline checks the Go toolchain, prepares an isolated build
environment, installs dependencies, clears previous artifacts, compiles
and packs the bundle, then opens the output directory.

Examples:
  progriv-dist
  progriv-dist --config ./progriv.bundle.jsonc
  progriv-dist --no-pause --skip-open --json`,

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLogging(verbose)
		},

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			distNoPause = flags.noPause || os.Getenv(noPauseEnvVar) != ""
			return runDist(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output the step report in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.Flags().StringVar(&flags.config, "config", bundle.DescriptorFileName,
		"Bundle descriptor path")
	rootCmd.Flags().BoolVar(&flags.noPause, "no-pause", false,
		"Do not wait for Enter before exiting on failure")
	rootCmd.Flags().BoolVar(&flags.skipOpen, "skip-open", false,
		"Do not open the output directory when the build succeeds")

	return rootCmd
}

// ExecuteDist runs the progriv-dist root command. It prints errors the
// same way Execute does, but pauses an interactive console afterwards
// so a double-click launch keeps its window open long enough to read
// the diagnostic.
func ExecuteDist(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		code := model.ExitGeneralError
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			code = cliErr.Code
		} else {
			printError(err.Error(), nil)
		}
		dist.PauseIfInteractive(distNoPause)
		os.Exit(int(code))
	}
}

// runDist loads and validates the descriptor, then hands off to the
// pipeline. The step report is printed even when the pipeline fails, so
// the operator sees which checkpoint stopped the build.
func runDist(ctx context.Context, flags *distFlags) error {
	// Step 1: Resolve the descriptor. Its directory becomes the module
	// root that go.mod, assets, build/ and dist/ resolve against.
	descriptorPath, err := filepath.Abs(flags.config)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to resolve descriptor path", err)
	}
	baseDir := filepath.Dir(descriptorPath)
	VerboseLog("Descriptor: %s", descriptorPath)
	VerboseLog("Module root: %s", baseDir)

	descriptor, err := bundle.LoadDescriptor(descriptorPath)
	if err != nil {
		return err // LoadDescriptor already returns CLIError
	}

	// Step 2: Validate before any step runs. A broken descriptor must
	// not get as far as touching build/ or dist/.
	if verrs := descriptor.Validate(baseDir); len(verrs) > 0 {
		return model.WrapCLIError(model.ExitConfigError, "descriptor check failed",
			bundle.ValidationErrorsToError(verrs))
	}
	VerboseLog("Bundling %s for %s", descriptor.OutputName(), descriptor.Target())

	// Step 3: Run the pipeline.
	pipeline := dist.NewPipeline(baseDir, descriptor)
	pipeline.SkipOpen = flags.skipOpen

	report, runErr := pipeline.Run(ctx)
	printDistReport(report)
	return runErr
}

// printDistReport outputs the step report in text or JSON format.
func printDistReport(report *dist.Report) {
	if report == nil {
		return
	}
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	output.Println("")
	for _, step := range report.Steps {
		line := step.Name
		if step.Detail != "" {
			line += "  " + output.StyleDim.Render(step.Detail)
		}
		line += " " + output.StyleDim.Render("("+step.Duration.Round(time.Millisecond).String()+")")

		switch step.Status {
		case dist.StepOK:
			output.Println(output.FormatCheckmark(line))
		case dist.StepFailed:
			output.Println(output.FormatCross(line))
		case dist.StepSkipped:
			output.Println("- " + line)
		}
	}

	if report.Success {
		output.Println("")
		output.Println(output.FormatCheckmark("Bundle ready: " + output.StyleNoun.Render(report.ExePath)))
		output.Println("  " + output.FormatStatCard("Payload files", fmt.Sprintf("%d", len(report.PayloadFiles))))
		if report.EnvReused {
			output.Println("  " + output.FormatStatCard("Build environment", "reused"))
		}
	}
}
