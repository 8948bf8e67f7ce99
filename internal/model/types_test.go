package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigSource_String verifies that ConfigSource values produce
// the expected string representations for CLI output and JSON serialization.
func TestConfigSource_String(t *testing.T) {
	tests := []struct {
		source   ConfigSource
		expected string
	}{
		{SourceGist, "gist"},
		{SourceCached, "cached"},
		{SourceSaved, "saved"},
		{SourceFallback, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.source.String())
		})
	}
}

// TestConfigSource_IsValid checks that only defined source values pass validation.
func TestConfigSource_IsValid(t *testing.T) {
	assert.True(t, SourceGist.IsValid())
	assert.True(t, SourceCached.IsValid())
	assert.True(t, SourceSaved.IsValid())
	assert.True(t, SourceFallback.IsValid())
	assert.False(t, ConfigSource("invalid").IsValid())
	assert.False(t, ConfigSource("").IsValid())
}

// TestConfigSource_Describe verifies the human-readable connection summary
// labels, including the passthrough for unknown values.
func TestConfigSource_Describe(t *testing.T) {
	assert.Equal(t, "GitHub Gist", SourceGist.Describe())
	assert.Equal(t, "cached copy", SourceCached.Describe())
	assert.Equal(t, "saved settings", SourceSaved.Describe())
	assert.Equal(t, "built-in fallback", SourceFallback.Describe())
	assert.Equal(t, "mystery", ConfigSource("mystery").Describe())
}

// TestParseSubmissionAction verifies string-to-action conversion,
// including case normalization and error cases.
func TestParseSubmissionAction(t *testing.T) {
	tests := []struct {
		input    string
		expected SubmissionAction
		hasError bool
	}{
		{"auto_ban", ActionAutoBan, false},
		{"pending", ActionPending, false},
		{"AUTO_BAN", ActionAutoBan, false}, // case insensitive
		{"  pending  ", ActionPending, false},
		{"ban", "", true}, // unknown value
		{"", "", true},    // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseSubmissionAction(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestErrorKind_Bannable verifies that only keyword, headline, and
// description errors are eligible for moderation submission.
func TestErrorKind_Bannable(t *testing.T) {
	assert.True(t, KindKeyword.Bannable())
	assert.True(t, KindHeadline.Bannable())
	assert.True(t, KindDescription.Bannable())
	assert.False(t, KindAd.Bannable())
	assert.False(t, KindCampaign.Bannable())
	assert.False(t, KindAdGroup.Bannable())
	assert.False(t, KindOther.Bannable())
}

// TestSite_DisplayName verifies the business name fallback to the URL.
func TestSite_DisplayName(t *testing.T) {
	assert.Equal(t, "Iron Works Gym", Site{URL: "ironworks.com", Name: "Iron Works Gym"}.DisplayName())
	assert.Equal(t, "ironworks.com", Site{URL: "ironworks.com"}.DisplayName())
	assert.Equal(t, "ironworks.com", Site{URL: "ironworks.com", Name: "   "}.DisplayName())
}

// TestSheetConfigFromMap verifies default application and value parsing
// for the campaign parameters row.
func TestSheetConfigFromMap(t *testing.T) {
	t.Run("empty map yields all defaults", func(t *testing.T) {
		cfg := SheetConfigFromMap(map[string]any{})

		assert.Equal(t, "10", cfg.Budget)
		assert.Equal(t, "Maximize Conversions", cfg.BidStrategy)
		assert.Equal(t, "Google Search", cfg.Networks)
		assert.Equal(t, "United States", cfg.TargetCountry)
		assert.Equal(t, "en", cfg.TargetLanguage)
		assert.Equal(t, "No", cfg.EUPoliticalAds)
		assert.Equal(t, "Broad match", cfg.KeywordMatchType)
		assert.Equal(t, 7, cfg.CampaignDays)
		assert.Empty(t, cfg.Message)
	})

	t.Run("explicit values override defaults", func(t *testing.T) {
		cfg := SheetConfigFromMap(map[string]any{
			"budget":             "25",
			"bid_strategy":       "Maximize Clicks",
			"target_country":     "Canada",
			"keyword_match_type": "Exact match",
			"campaign_days":      "14",
			"message":            "  maintenance tonight  ",
		})

		assert.Equal(t, "25", cfg.Budget)
		assert.Equal(t, "Maximize Clicks", cfg.BidStrategy)
		assert.Equal(t, "Canada", cfg.TargetCountry)
		assert.Equal(t, "Exact match", cfg.KeywordMatchType)
		assert.Equal(t, 14, cfg.CampaignDays)
		assert.Equal(t, "maintenance tonight", cfg.Message)
	})

	t.Run("JSON numbers are accepted", func(t *testing.T) {
		// Apps Script serializes sheet numbers as JSON numbers,
		// which arrive as float64 after unmarshalling.
		cfg := SheetConfigFromMap(map[string]any{
			"budget":        float64(15),
			"campaign_days": float64(3),
		})

		assert.Equal(t, "15", cfg.Budget)
		assert.Equal(t, 3, cfg.CampaignDays)
	})

	t.Run("invalid campaign days fall back to default", func(t *testing.T) {
		cfg := SheetConfigFromMap(map[string]any{"campaign_days": "soon"})
		assert.Equal(t, 7, cfg.CampaignDays)

		cfg = SheetConfigFromMap(map[string]any{"campaign_days": "-2"})
		assert.Equal(t, 7, cfg.CampaignDays)
	})
}

// TestSheetConfig_MatchType verifies conversion to the short match type
// form accepted by Google Ads Editor.
func TestSheetConfig_MatchType(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Broad match", "Broad"},
		{"Phrase match", "Phrase"},
		{"Exact Match", "Exact"},
		{"Broad", "Broad"}, // already short
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := SheetConfig{KeywordMatchType: tt.raw}
			assert.Equal(t, tt.want, cfg.MatchType())
		})
	}
}

// TestFarmerStatsFromMap verifies stats extraction from both the nested
// farmer_info shape and the legacy flat shape.
func TestFarmerStatsFromMap(t *testing.T) {
	t.Run("nested farmer_info", func(t *testing.T) {
		stats := FarmerStatsFromMap(map[string]any{
			"status": "ok",
			"farmer_info": map[string]any{
				"total":       float64(120),
				"today":       float64(4),
				"last_7d":     float64(25),
				"last_30d":    float64(98),
				"avg_per_day": 3.5,
				"rank":        "#2",
				"last_active": "2026-02-27 18:40",
			},
		})

		assert.Equal(t, "120", stats.Total)
		assert.Equal(t, "4", stats.Today)
		assert.Equal(t, "25", stats.Last7d)
		assert.Equal(t, "98", stats.Last30d)
		assert.Equal(t, "3.5", stats.AvgPerDay)
		assert.Equal(t, "#2", stats.Rank)
		assert.Equal(t, "2026-02-27 18:40", stats.LastActive)
	})

	t.Run("flat legacy shape", func(t *testing.T) {
		stats := FarmerStatsFromMap(map[string]any{
			"total": "55",
			"today": "1",
		})

		assert.Equal(t, "55", stats.Total)
		assert.Equal(t, "1", stats.Today)
		assert.Equal(t, "0", stats.Last7d, "missing counters default to 0")
		assert.Equal(t, "—", stats.Rank, "missing labels default to a dash")
	})

	t.Run("total_generations fallback", func(t *testing.T) {
		stats := FarmerStatsFromMap(map[string]any{
			"total_generations": float64(7),
		})
		assert.Equal(t, "7", stats.Total)
	})
}

// TestIsDevTag verifies dev-mode tag detection.
func TestIsDevTag(t *testing.T) {
	assert.True(t, IsDevTag("_DEV_"))
	assert.True(t, IsDevTag("_dev_"))
	assert.True(t, IsDevTag("  _DEV_  "))
	assert.False(t, IsDevTag("dev"))
	assert.False(t, IsDevTag(""))
	assert.False(t, IsDevTag("farmer42"))
}

// TestValidateFarmerTag verifies farmer tag validation rules.
func TestValidateFarmerTag(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		hasError bool
	}{
		{"simple tag", "farmer42", false},
		{"dev tag", "_DEV_", false},
		{"tag with surrounding spaces", "  farmer42  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"inner space", "farmer 42", true},
		{"tab", "farmer\t42", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFarmerTag(tt.tag)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestCLIError_Error verifies the error message formatting with and
// without a wrapped underlying error.
func TestCLIError_Error(t *testing.T) {
	plain := NewCLIError(ExitToolchainMissing, "go toolchain not found")
	assert.Equal(t, "go toolchain not found", plain.Error())
	assert.Equal(t, ExitToolchainMissing, plain.Code)

	underlying := errors.New("exec: \"go\": executable file not found in $PATH")
	wrapped := WrapCLIError(ExitToolchainMissing, "go toolchain not found", underlying)
	assert.Contains(t, wrapped.Error(), "go toolchain not found")
	assert.Contains(t, wrapped.Error(), "executable file not found")
}

// TestCLIError_Unwrap verifies errors.Is/errors.As compatibility through
// the wrapping chain.
func TestCLIError_Unwrap(t *testing.T) {
	sentinel := errors.New("download failed")
	wrapped := WrapCLIError(ExitDepsInstallFailed, "dependency installation failed", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))

	var cliErr *CLIError
	require.True(t, errors.As(error(wrapped), &cliErr))
	assert.Equal(t, ExitDepsInstallFailed, cliErr.Code)

	assert.Nil(t, NewCLIError(ExitGeneralError, "plain").Unwrap())
}
