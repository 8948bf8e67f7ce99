// Package cli — settings.go implements the "progriv settings" command.
//
// Settings shows the effective configuration (file values, environment
// overrides and defaults merged), changes the output folder, and resets
// everything back to defaults. The Gemini key is never printed, only
// whether one is configured.
package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/config"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// NewSettingsCommand creates the "settings" cobra command.
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change application settings",
		Long: `Show the effective settings, change the output folder, or reset
everything to defaults.

Examples:
  progriv settings
  progriv settings set output-folder ~/campaigns
  progriv settings reset`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsShow()
		},
	}

	cmd.AddCommand(newSettingsSetCommand())
	cmd.AddCommand(newSettingsResetCommand())

	return cmd
}

// newSettingsSetCommand creates the "settings set" subcommand.
func newSettingsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting (supported key: output-folder)",

		Args: cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsSet(args[0], args[1])
		},
	}
}

// newSettingsResetCommand creates the "settings reset" subcommand.
func newSettingsResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings to defaults",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsReset(yes)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Reset without asking for confirmation")

	return cmd
}

// runSettingsShow prints the effective settings.
func runSettingsShow() error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	path, _ := config.SettingsPath()

	if IsJSONOutput() {
		type resultJSON struct {
			FarmerTag    string `json:"farmerTag"`
			TagLocked    bool   `json:"tagLocked"`
			ScriptURL    string `json:"scriptUrl"`
			GeminiKey    string `json:"geminiKey"`
			GeminiModel  string `json:"geminiModel"`
			OutputFolder string `json:"outputFolder"`
			NoPause      bool   `json:"noPause"`
			SettingsFile string `json:"settingsFile"`
		}
		result := resultJSON{
			FarmerTag:    settings.FarmerTag,
			TagLocked:    settings.TagLocked,
			ScriptURL:    settings.ScriptURL,
			GeminiKey:    maskedKey(settings.GeminiKey),
			GeminiModel:  settings.GeminiModel,
			OutputFolder: settings.OutputFolder,
			NoPause:      settings.NoPause,
			SettingsFile: path,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	output.Println("  " + output.FormatStatCard("Farmer tag", orPlaceholder(settings.FarmerTag)))
	output.Println("  " + output.FormatStatCard("Script URL", orPlaceholder(settings.ScriptURL)))
	output.Println("  " + output.FormatStatCard("Gemini key", maskedKey(settings.GeminiKey)))
	output.Println("  " + output.FormatStatCard("Gemini model", settings.GeminiModel))
	output.Println("  " + output.FormatStatCard("Output folder", settings.OutputFolder))
	output.Println("  " + output.FormatStatCard("No pause", yesNo(settings.NoPause)))
	output.Println("  " + output.FormatStatCard("Settings file", path))
	return nil
}

// runSettingsSet changes one setting. Only the output folder is
// operator-adjustable from the CLI; everything else comes from the
// remote config or the account command.
func runSettingsSet(key, value string) error {
	if key != "output-folder" {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unknown settings key %q (supported: output-folder)", key))
	}

	folder, err := filepath.Abs(value)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid output folder path", err)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	settings.OutputFolder = folder
	if err := saveSettings(settings); err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("Output folder set to " + output.StyleNoun.Render(folder)))
	return nil
}

// runSettingsReset restores the defaults after confirmation. The farmer
// tag is cleared too, exactly like a fresh install.
func runSettingsReset(assumeYes bool) error {
	if !confirm("Reset all settings to defaults? This clears the farmer tag as well.", assumeYes) {
		return model.NewCLIError(model.ExitUserCancelled, "settings reset cancelled")
	}

	if err := saveSettings(config.DefaultSettings()); err != nil {
		return err
	}

	output.Println(output.FormatCheckmark("Settings reset to defaults"))
	return nil
}

// orPlaceholder substitutes a dim placeholder for empty values.
func orPlaceholder(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

// maskedKey reports whether a Gemini key is configured without ever
// echoing the key itself.
func maskedKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return "configured"
}
