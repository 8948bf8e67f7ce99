// Package config — loader.go reads and writes settings.json with
// environment variable overrides layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// settingsKeys lists every key read from the settings file. Each one
// is also bound to a PROGRIV_* environment variable.
var settingsKeys = []string{
	"farmer_tag",
	"tag_locked",
	"script_url",
	"gemini_key",
	"gemini_model",
	"output_folder",
	"no_pause",
}

// Loader reads Settings from a JSON file and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader with environment binding configured.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind each key explicitly. AutomaticEnv alone does not surface
	// variables for keys that are absent from the config file.
	for _, key := range settingsKeys {
		_ = v.BindEnv(key)
	}

	return &Loader{v: v}
}

// Load reads the settings file at path, or the default SettingsPath
// when path is empty. A missing file is not an error: environment
// overrides and defaults still apply.
func (l *Loader) Load(path string) (Settings, error) {
	if path == "" {
		var err error
		path, err = SettingsPath()
		if err != nil {
			return Settings{}, fmt.Errorf("failed to resolve settings path: %w", err)
		}
	}

	l.v.SetConfigFile(path)
	l.v.SetConfigType("json")
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	return s.WithDefaults(), nil
}

// Save writes s to the settings file at path, or the default
// SettingsPath when path is empty. Parent directories are created as
// needed. The write goes through a temp file in the same directory
// followed by a rename, so a crash mid-save never leaves a truncated
// settings file behind.
func Save(s Settings, path string) error {
	if path == "" {
		var err error
		path, err = SettingsPath()
		if err != nil {
			return fmt.Errorf("failed to resolve settings path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), SettingsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
