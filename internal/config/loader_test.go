package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoaderLoadFromFile tests loading settings from a JSON file.
func TestLoaderLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{
  "farmer_tag": "ivan_23",
  "tag_locked": true,
  "script_url": "https://script.google.com/macros/s/abc/exec",
  "gemini_key": "AIzaSyTestKey",
  "gemini_model": "gemini-2.0-flash",
  "output_folder": "/tmp/ads-out"
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ivan_23", s.FarmerTag)
	assert.True(t, s.TagLocked)
	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", s.ScriptURL)
	assert.Equal(t, "AIzaSyTestKey", s.GeminiKey)
	assert.Equal(t, "gemini-2.0-flash", s.GeminiModel)
	assert.Equal(t, "/tmp/ads-out", s.OutputFolder)
}

// TestLoaderLoadMissingFile tests that a missing settings file yields
// defaults instead of an error.
func TestLoaderLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Empty(t, s.FarmerTag)
	assert.False(t, s.TagLocked)
	assert.Equal(t, DefaultGeminiModel, s.GeminiModel)
	assert.NotEmpty(t, s.OutputFolder)
}

// TestLoaderLoadAppliesDefaults tests that defaultable fields absent
// from the file are filled in.
func TestLoaderLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"farmer_tag": "olena"}`), 0o644))

	s, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "olena", s.FarmerTag)
	assert.Equal(t, DefaultGeminiModel, s.GeminiModel)
	assert.NotEmpty(t, s.OutputFolder)
}

// TestLoaderEnvOverride tests that PROGRIV_* environment variables
// take precedence over file values.
func TestLoaderEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"farmer_tag": "from_file", "gemini_model": "gemini-2.0-flash"}`), 0o644))

	t.Setenv("PROGRIV_FARMER_TAG", "from_env")
	t.Setenv("PROGRIV_GEMINI_KEY", "AIzaSyEnvKey")

	s, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", s.FarmerTag)
	assert.Equal(t, "AIzaSyEnvKey", s.GeminiKey)
	assert.Equal(t, "gemini-2.0-flash", s.GeminiModel, "file values without env overrides should survive")
}

// TestLoaderEnvOnly tests loading with no settings file at all.
func TestLoaderEnvOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	t.Setenv("PROGRIV_SCRIPT_URL", "https://script.google.com/macros/s/env/exec")

	s, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://script.google.com/macros/s/env/exec", s.ScriptURL)
}

// TestLoaderLoadInvalidJSON tests that malformed settings surface an
// error instead of silently resetting.
func TestLoaderLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"farmer_tag": `), 0o644))

	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

// TestSaveRoundTrip tests that saved settings load back unchanged.
func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	in := Settings{
		FarmerTag:    "petro",
		TagLocked:    true,
		ScriptURL:    "https://script.google.com/macros/s/xyz/exec",
		GeminiKey:    "AIzaSyRoundTrip",
		GeminiModel:  "gemini-2.5-flash",
		OutputFolder: "/tmp/out",
	}
	require.NoError(t, Save(in, path))

	out, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

// TestSaveCreatesParentDirs tests that Save creates missing parent
// directories.
func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "settings.json")

	require.NoError(t, Save(Settings{FarmerTag: "x"}, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
