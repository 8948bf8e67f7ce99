// Package config — config.go defines the persisted application settings
// and the well-known paths they live under.
package config

import (
	"os"
	"path/filepath"

	"github.com/progriv/progriv/internal/model"
)

const (
	// AppName is the ASCII name used for directories, executables and
	// the user-agent string. The localized display name lives in
	// DisplayName and is only ever shown, never used in paths.
	AppName = "Progriv"

	// DisplayName is the user-facing product name.
	DisplayName = "Прогрів"

	// BundleID identifies the packaged application.
	BundleID = "com.progriv.ads"

	// SettingsFileName is the JSON file holding persisted Settings.
	SettingsFileName = "settings.json"

	// DefaultGeminiModel is used when neither the remote config nor the
	// local settings name a model.
	DefaultGeminiModel = "gemini-2.5-flash"

	// outputFolderName is the directory created under the user's
	// Documents folder for generated campaign CSVs.
	outputFolderName = "ADS_Campaign_Output"
)

// EnvPrefix is the prefix for environment variable overrides, so
// PROGRIV_GEMINI_KEY overrides the gemini_key setting.
const EnvPrefix = "PROGRIV"

// Settings holds the locally persisted application state. Field tags
// match the keys in settings.json so files written by older builds
// keep loading.
type Settings struct {
	FarmerTag    string `json:"farmer_tag" mapstructure:"farmer_tag"`
	TagLocked    bool   `json:"tag_locked" mapstructure:"tag_locked"`
	ScriptURL    string `json:"script_url" mapstructure:"script_url"`
	GeminiKey    string `json:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel  string `json:"gemini_model" mapstructure:"gemini_model"`
	OutputFolder string `json:"output_folder" mapstructure:"output_folder"`
	NoPause      bool   `json:"no_pause" mapstructure:"no_pause"`
}

// DefaultSettings returns Settings with every defaultable field
// populated. FarmerTag and ScriptURL have no sensible default and
// stay empty until the user or the remote config provides them.
func DefaultSettings() Settings {
	return Settings{
		GeminiModel:  DefaultGeminiModel,
		OutputFolder: DefaultOutputFolder(),
	}
}

// WithDefaults fills the zero-valued defaultable fields of s and
// returns the result. Explicitly set values are never overridden.
func (s Settings) WithDefaults() Settings {
	if s.GeminiModel == "" {
		s.GeminiModel = DefaultGeminiModel
	}
	if s.OutputFolder == "" {
		s.OutputFolder = DefaultOutputFolder()
	}
	return s
}

// IsDev reports whether the configured farmer tag marks this install
// as a development one.
func (s Settings) IsDev() bool {
	return model.IsDevTag(s.FarmerTag)
}

// Validate checks the fields that other components depend on.
func (s Settings) Validate() error {
	if s.FarmerTag != "" {
		if err := model.ValidateFarmerTag(s.FarmerTag); err != nil {
			return err
		}
	}
	return nil
}

// SettingsDir returns the per-user directory that holds settings.json
// and the cached remote config. The directory is not created here.
func SettingsDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// SettingsPath returns the full path of the settings file.
func SettingsPath() (string, error) {
	dir, err := SettingsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// DefaultOutputFolder returns the directory where generated CSVs are
// written: Documents/ADS_Campaign_Output under the user's home, the
// home directory itself when Documents does not exist, or ./output
// as the last resort.
func DefaultOutputFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "output")
	}
	docs := filepath.Join(home, "Documents")
	if info, err := os.Stat(docs); err == nil && info.IsDir() {
		return filepath.Join(docs, outputFolderName)
	}
	return filepath.Join(home, outputFolderName)
}
