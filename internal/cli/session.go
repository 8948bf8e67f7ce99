// Package cli — session.go holds the small helpers every operator
// command shares: loading and saving settings, requiring a configured
// farmer tag, and building the sheet client.
package cli

import (
	"github.com/progriv/progriv/internal/config"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/sheet"
)

// loadSettings reads the persisted settings with defaults and
// environment overrides applied. Failures map to ExitConfigError.
func loadSettings() (config.Settings, error) {
	s, err := config.NewLoader().Load("")
	if err != nil {
		return config.Settings{}, model.WrapCLIError(model.ExitConfigError, "failed to load settings", err)
	}
	return s, nil
}

// saveSettings persists s to the default settings path.
func saveSettings(s config.Settings) error {
	if err := config.Save(s, ""); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to save settings", err)
	}
	return nil
}

// requireFarmerTag returns the configured farmer tag, or a config
// error pointing the operator at `account set`.
func requireFarmerTag(s config.Settings) (string, error) {
	if s.FarmerTag == "" {
		return "", model.NewCLIError(model.ExitConfigError,
			"no farmer tag configured, run `progriv account set <tag>` first")
	}
	return s.FarmerTag, nil
}

// newSheetClient builds the Apps Script client from the configured
// script URL. NewClient rejects an empty URL with a config error that
// already tells the operator to run sync.
func newSheetClient(s config.Settings) (*sheet.Client, error) {
	return sheet.NewClient(s.ScriptURL)
}
