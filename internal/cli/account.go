// Package cli — account.go implements the "progriv account" command.
//
// The account is just the farmer tag: the name the control sheet uses
// to attribute generations and submissions. The tag locks after the
// first save so casual renames cannot split a farmer's statistics; the
// reserved dev tag keeps it changeable, and --reset (with confirmation)
// clears it outright.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// accountFlags holds the flag values for the account command.
type accountFlags struct {
	reset bool // --reset: clear the tag and its lock
	yes   bool // --yes: skip the reset confirmation
}

// NewAccountCommand creates the "account" cobra command.
func NewAccountCommand() *cobra.Command {
	flags := &accountFlags{}

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show or manage the farmer tag",
		Long: `Show the configured farmer tag and its lock state.

The tag identifies you in the control sheet. It locks after the first
save; use --reset to clear it (requires confirmation).

Examples:
  progriv account
  progriv account set ivan-23
  progriv account --reset`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.reset {
				return runAccountReset(flags)
			}
			return runAccountShow()
		},
	}

	cmd.Flags().BoolVar(&flags.reset, "reset", false, "Clear the farmer tag and unlock it")
	cmd.Flags().BoolVar(&flags.yes, "yes", false, "Reset without asking for confirmation")

	cmd.AddCommand(newAccountSetCommand())

	return cmd
}

// newAccountSetCommand creates the "account set" subcommand.
func newAccountSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <tag>",
		Short: "Set the farmer tag",

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountSet(args[0])
		},
	}
}

// runAccountShow prints the current account state.
func runAccountShow() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		printAccountJSON(settings.FarmerTag, settings.TagLocked, settings.IsDev())
		return nil
	}

	if settings.FarmerTag == "" {
		output.Println("No farmer tag set. Run `progriv account set <tag>`.")
		return nil
	}

	output.Println("  " + output.FormatStatCard("Farmer tag", settings.FarmerTag))
	output.Println("  " + output.FormatStatCard("Locked", yesNo(settings.TagLocked)))
	if settings.IsDev() {
		output.Println("  " + output.FormatStatCard("Dev mode", "enabled"))
	}
	return nil
}

// runAccountSet validates and saves a new farmer tag. The first save
// locks the tag; only a dev-tagged install may change it afterwards.
func runAccountSet(tag string) error {
	if err := model.ValidateFarmerTag(tag); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid farmer tag", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if settings.TagLocked && !settings.IsDev() {
		return model.NewCLIError(model.ExitConfigError, fmt.Sprintf(
			"farmer tag is locked to %q, use `progriv account --reset` to clear it", settings.FarmerTag))
	}

	settings.FarmerTag = tag
	settings.TagLocked = true
	if err := saveSettings(settings); err != nil {
		return err
	}

	if IsJSONOutput() {
		printAccountJSON(settings.FarmerTag, settings.TagLocked, settings.IsDev())
		return nil
	}

	output.Println(output.FormatCheckmark("Farmer tag set to " + output.StyleNoun.Render(tag)))
	if settings.IsDev() {
		output.Warn("development mode enabled, the tag lock no longer applies")
	}
	return nil
}

// runAccountReset clears the tag after confirmation. Declining cancels
// the command with ExitUserCancelled so scripts can tell a cancel from
// a failure.
func runAccountReset(flags *accountFlags) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.FarmerTag == "" && !settings.TagLocked {
		output.Println("No farmer tag set, nothing to reset.")
		return nil
	}

	prompt := fmt.Sprintf("Reset the farmer tag %q? The sheet will stop attributing work to you.", settings.FarmerTag)
	if !confirm(prompt, flags.yes) {
		return model.NewCLIError(model.ExitUserCancelled, "account reset cancelled")
	}

	settings.FarmerTag = ""
	settings.TagLocked = false
	if err := saveSettings(settings); err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("Farmer tag cleared"))
	return nil
}

// printAccountJSON outputs the account state as structured JSON.
func printAccountJSON(tag string, locked, dev bool) {
	type resultJSON struct {
		FarmerTag string `json:"farmerTag"`
		TagLocked bool   `json:"tagLocked"`
		DevMode   bool   `json:"devMode"`
	}
	data, _ := json.MarshalIndent(resultJSON{FarmerTag: tag, TagLocked: locked, DevMode: dev}, "", "  ")
	fmt.Println(string(data))
}

// yesNo renders a bool for the stat cards.
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
