// Package model defines the domain types for the progriv CLI tools.
//
// All entities in this package are pure data: sites and remote configuration
// pulled from the control sheet, generated ad content, parsed upload errors,
// and the exit-code/error machinery shared by the progriv and progriv-dist
// binaries.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ConfigSource indicates where the effective remote configuration
// (script URL, Gemini key, model name) was resolved from.
//
// Resolution order is always gist → cached → saved → fallback; the source
// is surfaced to the user so a stale or offline configuration is visible.
type ConfigSource string

const (
	// SourceGist means the configuration came from a live Gist fetch.
	SourceGist ConfigSource = "gist"

	// SourceCached means the Gist was unreachable and the last successfully
	// fetched copy on disk was reused.
	SourceCached ConfigSource = "cached"

	// SourceSaved means the configuration came from the local settings file.
	SourceSaved ConfigSource = "saved"

	// SourceFallback means the compiled-in defaults were used.
	SourceFallback ConfigSource = "fallback"
)

// String returns the string representation of ConfigSource.
func (s ConfigSource) String() string {
	return string(s)
}

// IsValid checks whether the ConfigSource value is one of the
// predefined valid sources.
func (s ConfigSource) IsValid() bool {
	switch s {
	case SourceGist, SourceCached, SourceSaved, SourceFallback:
		return true
	default:
		return false
	}
}

// Describe returns the human-readable label used in connection summaries.
func (s ConfigSource) Describe() string {
	switch s {
	case SourceGist:
		return "GitHub Gist"
	case SourceCached:
		return "cached copy"
	case SourceSaved:
		return "saved settings"
	case SourceFallback:
		return "built-in fallback"
	default:
		return string(s)
	}
}

// SubmissionAction controls how the control sheet treats a submitted
// rejected element.
type SubmissionAction string

const (
	// ActionAutoBan adds the element straight to the Banned sheet,
	// bypassing moderation.
	ActionAutoBan SubmissionAction = "auto_ban"

	// ActionPending queues the element in Pending Changes for review.
	ActionPending SubmissionAction = "pending"
)

// String returns the string representation of SubmissionAction.
func (a SubmissionAction) String() string {
	return string(a)
}

// IsValid checks whether the SubmissionAction value is one of the
// predefined valid actions.
func (a SubmissionAction) IsValid() bool {
	switch a {
	case ActionAutoBan, ActionPending:
		return true
	default:
		return false
	}
}

// ParseSubmissionAction converts a string to a SubmissionAction.
// Returns an error if the string does not match any valid action.
func ParseSubmissionAction(s string) (SubmissionAction, error) {
	action := SubmissionAction(strings.ToLower(strings.TrimSpace(s)))
	if !action.IsValid() {
		return "", fmt.Errorf("invalid submission action: %q (valid: auto_ban, pending)", s)
	}
	return action, nil
}

// ErrorKind classifies a rejected element parsed from a Google Ads Editor
// results file.
type ErrorKind string

const (
	// KindKeyword is a rejected keyword row.
	KindKeyword ErrorKind = "keyword"

	// KindHeadline is a rejected headline column of a responsive search ad.
	KindHeadline ErrorKind = "headline"

	// KindDescription is a rejected description column of a responsive
	// search ad.
	KindDescription ErrorKind = "description"

	// KindAd is an ad row whose error could not be pinned to a specific
	// headline or description.
	KindAd ErrorKind = "ad"

	// KindCampaign is a rejected campaign row.
	KindCampaign ErrorKind = "campaign"

	// KindAdGroup is a rejected ad-group row.
	KindAdGroup ErrorKind = "ad_group"

	// KindOther is any error row that could not be classified.
	KindOther ErrorKind = "other"
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	return string(k)
}

// Bannable reports whether elements of this kind are eligible for
// submission to the Banned/Pending sheets. Campaign and ad-group errors
// are informational only.
func (k ErrorKind) Bannable() bool {
	switch k {
	case KindKeyword, KindHeadline, KindDescription:
		return true
	default:
		return false
	}
}

// Site is one advertisable site from the control sheet.
type Site struct {
	// URL is the site address as stored in the sheet. May lack a scheme.
	URL string `json:"url"`

	// Name is the human-facing business name. Falls back to URL when the
	// sheet leaves it empty.
	Name string `json:"name"`
}

// DisplayName returns the business name, or the URL when no name is set.
func (s Site) DisplayName() string {
	if strings.TrimSpace(s.Name) != "" {
		return s.Name
	}
	return s.URL
}

// RemoteConfig is the control-panel configuration resolved from the Gist.
// It names the Apps Script endpoint and the Gemini credentials to use.
type RemoteConfig struct {
	// ScriptURL is the Apps Script web-app endpoint for the control sheet.
	ScriptURL string `json:"script_url"`

	// GeminiKey is the decoded Gemini API key. Never the encoded form.
	GeminiKey string `json:"-"`

	// GeminiModel is the Gemini model identifier, e.g. "gemini-2.5-flash".
	GeminiModel string `json:"gemini_model"`

	// Source records where this configuration was resolved from.
	Source ConfigSource `json:"source"`
}

// SheetConfig holds the campaign parameters row from the control sheet.
// The sheet stores everything as strings; numeric fields are parsed with
// defaults applied, so a partially filled sheet still yields a usable
// configuration.
type SheetConfig struct {
	// Budget is the daily campaign budget in account currency units.
	Budget string `json:"budget"`

	// BidStrategy is the Google Ads bid strategy type.
	BidStrategy string `json:"bid_strategy"`

	// Networks is the comma-separated network selection.
	Networks string `json:"networks"`

	// TargetCountry is the campaign location target.
	TargetCountry string `json:"target_country"`

	// TargetLanguage is the campaign language code.
	TargetLanguage string `json:"target_language"`

	// EUPoliticalAds is the "EU political ads" declaration column.
	EUPoliticalAds string `json:"eu_political_ads"`

	// KeywordMatchType is the raw match type from the sheet
	// (e.g. "Broad match"). Editor CSV wants the short form; see MatchType.
	KeywordMatchType string `json:"keyword_match_type"`

	// CampaignDays is the campaign duration used to compute the end date.
	CampaignDays int `json:"campaign_days"`

	// Message is an optional broadcast shown to operators after sync.
	Message string `json:"message,omitempty"`
}

// Sheet config defaults, applied field by field when the sheet row leaves
// a value empty.
const (
	DefaultBudget           = "10"
	DefaultBidStrategy      = "Maximize Conversions"
	DefaultNetworks         = "Google Search"
	DefaultTargetCountry    = "United States"
	DefaultTargetLanguage   = "en"
	DefaultEUPoliticalAds   = "No"
	DefaultKeywordMatchType = "Broad match"
	DefaultCampaignDays     = 7
)

// SheetConfigFromMap builds a SheetConfig from the raw key/value object
// returned by the get_config action, applying defaults for missing or
// empty values. Numbers arriving as JSON numbers are accepted.
func SheetConfigFromMap(raw map[string]any) SheetConfig {
	str := func(key, def string) string {
		v, ok := raw[key]
		if !ok {
			return def
		}
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			return def
		}
		return s
	}

	cfg := SheetConfig{
		Budget:           str("budget", DefaultBudget),
		BidStrategy:      str("bid_strategy", DefaultBidStrategy),
		Networks:         str("networks", DefaultNetworks),
		TargetCountry:    str("target_country", DefaultTargetCountry),
		TargetLanguage:   str("target_language", DefaultTargetLanguage),
		EUPoliticalAds:   str("eu_political_ads", DefaultEUPoliticalAds),
		KeywordMatchType: str("keyword_match_type", DefaultKeywordMatchType),
		Message:          strings.TrimSpace(stringify(raw["message"])),
	}

	cfg.CampaignDays = DefaultCampaignDays
	if days, err := strconv.Atoi(str("campaign_days", "")); err == nil && days > 0 {
		cfg.CampaignDays = days
	}

	return cfg
}

// MatchType returns the keyword match type in the short form Google Ads
// Editor accepts: "Broad match" → "Broad", "Phrase Match" → "Phrase".
func (c SheetConfig) MatchType() string {
	s := strings.ReplaceAll(c.KeywordMatchType, " match", "")
	return strings.ReplaceAll(s, " Match", "")
}

// FarmerStats is the per-operator generation statistics card set.
// Values are kept as display strings because the sheet returns a mix of
// numbers and preformatted text (ranks, timestamps).
type FarmerStats struct {
	Total      string `json:"total"`
	Today      string `json:"today"`
	Last7d     string `json:"last_7d"`
	Last30d    string `json:"last_30d"`
	AvgPerDay  string `json:"avg_per_day"`
	Rank       string `json:"rank"`
	LastActive string `json:"last_active"`
}

// FarmerStatsFromMap builds FarmerStats from a get_farmer_stats response.
// The API nests the card values under "farmer_info"; older deployments
// return them flat, and a top-level "total_generations" is accepted as the
// total. Missing counters default to "0", missing labels to "—".
func FarmerStatsFromMap(raw map[string]any) FarmerStats {
	info := raw
	if nested, ok := raw["farmer_info"].(map[string]any); ok {
		info = nested
	}

	count := func(key string) string {
		if v, ok := info[key]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
		return "0"
	}
	label := func(key string) string {
		if v, ok := info[key]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				return s
			}
		}
		return "—"
	}

	stats := FarmerStats{
		Total:      count("total"),
		Today:      count("today"),
		Last7d:     count("last_7d"),
		Last30d:    count("last_30d"),
		AvgPerDay:  count("avg_per_day"),
		Rank:       label("rank"),
		LastActive: label("last_active"),
	}

	// Some deployments only expose the lifetime counter at the top level.
	if stats.Total == "0" {
		if v, ok := raw["total_generations"]; ok {
			if s := strings.TrimSpace(stringify(v)); s != "" {
				stats.Total = s
			}
		}
	}

	return stats
}

// stringify renders a raw JSON value as the string the sheet meant.
// Integral floats lose their ".0" suffix so counters read naturally.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// AdContent is the generated campaign content for one site, after
// validation and banned-keyword filtering.
type AdContent struct {
	// Keywords are the search keywords, at most 10 survive into the CSV.
	Keywords []string `json:"keywords"`

	// Headlines are the RSA headlines, each at most 30 characters,
	// at most 8 entries.
	Headlines []string `json:"headlines"`

	// Descriptions are the RSA descriptions, each at most 90 characters,
	// at most 2 entries.
	Descriptions []string `json:"descriptions"`
}

// ParsedError is one rejected element recognized in a Google Ads Editor
// results file.
type ParsedError struct {
	// Kind classifies the rejected element.
	Kind ErrorKind `json:"kind"`

	// Value is the rejected text itself (keyword, headline, ...).
	Value string `json:"value"`

	// Reason is the cleaned-up rejection reason.
	Reason string `json:"reason"`

	// OriginalError is the full error cell text as exported.
	OriginalError string `json:"originalError"`

	// RowType is the Editor row type the error was found on
	// ("Keyword", "Responsive search ad", ...).
	RowType string `json:"rowType"`
}

// Submission is one element prepared for the submit_errors /
// submit_ad_errors actions.
type Submission struct {
	Kind          ErrorKind        `json:"type"`
	Value         string           `json:"value"`
	Reason        string           `json:"reason"`
	OriginalError string           `json:"original_error,omitempty"`
	Action        SubmissionAction `json:"action,omitempty"`
}

// DevFarmerTag is the reserved operator tag that unlocks development mode:
// the tag never locks and moderation-only guards are relaxed.
const DevFarmerTag = "_DEV_"

// IsDevTag reports whether the given farmer tag enables development mode.
// The comparison is case-insensitive, matching how tags are entered by hand.
func IsDevTag(tag string) bool {
	return strings.EqualFold(strings.TrimSpace(tag), DevFarmerTag)
}

// ValidateFarmerTag checks that a farmer tag is usable as a sheet key.
// Tags identify operators in the control sheet, so they must be non-empty
// and free of whitespace.
func ValidateFarmerTag(tag string) error {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return fmt.Errorf("farmer tag must not be empty")
	}
	if strings.ContainsAny(trimmed, " \t") {
		return fmt.Errorf("invalid farmer tag %q: must not contain whitespace", tag)
	}
	return nil
}

// ExitCode defines the process exit codes shared by progriv and
// progriv-dist. The dist pipeline maps each of its fatal checkpoints to a
// distinct code so wrapper scripts can tell the failure stages apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitToolchainMissing indicates the Go toolchain was not found on
	// PATH (first pipeline checkpoint).
	ExitToolchainMissing ExitCode = 2

	// ExitEnvSetupFailed indicates the isolated build environment could
	// not be created (second pipeline checkpoint).
	ExitEnvSetupFailed ExitCode = 3

	// ExitDepsInstallFailed indicates dependency download failed or the
	// dependency manifest is missing (third pipeline checkpoint).
	ExitDepsInstallFailed ExitCode = 4

	// ExitBundleFailed indicates the bundling step failed
	// (fourth pipeline checkpoint).
	ExitBundleFailed ExitCode = 5

	// ExitConfigError indicates a missing or invalid configuration file
	// (bundle descriptor or settings).
	ExitConfigError ExitCode = 6

	// ExitUserCancelled indicates the user declined an interactive
	// confirmation.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
