// Package cli — sync.go implements the "progriv sync" command.
//
// Sync is the session-opening command: it resolves the control-panel
// configuration from the Gist, persists it to settings, probes the
// control sheet, and pulls everything the generation flow needs (sites,
// campaign parameters, ban lists) in one pass.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/gist"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
	"github.com/progriv/progriv/internal/sheet"
)

// NewSyncCommand creates the "sync" cobra command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull sites, campaign config and ban lists from the control sheet",
		Long: `Resolve the control-panel configuration, save it, and refresh all
sheet-backed data: the site list, campaign parameters, banned keywords
and banned domains.

Run sync at the start of a session and whenever the sheet changes.

Examples:
  progriv sync
  progriv sync --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context())
		},
	}
}

// runSync is the main orchestration function for the sync command.
func runSync(ctx context.Context) error {
	// Step 1: Load local settings so remote values merge over them.
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	// Step 2: Resolve the remote configuration. Resolve never fails,
	// it degrades from Gist to cache to built-in defaults.
	resolver := gist.NewResolver("", "")
	var remote model.RemoteConfig
	_ = output.RunWithSpinner(ctx, func() error {
		remote = resolver.Resolve(ctx)
		return nil
	}, output.WithTitle("Resolving control-panel configuration..."))

	source := remote.Source
	if remote.ScriptURL == "" && settings.ScriptURL != "" {
		// Nothing usable came back but a previous sync left a script
		// URL in the settings file. Report that source honestly.
		source = model.SourceSaved
	}
	VerboseLog("Remote config source: %s", source.Describe())

	// Step 3: Persist the resolved values. A failed save is only a
	// warning, the in-memory configuration still drives this run.
	if remote.ScriptURL != "" {
		settings.ScriptURL = remote.ScriptURL
	}
	if remote.GeminiKey != "" {
		settings.GeminiKey = remote.GeminiKey
	}
	if remote.GeminiModel != "" {
		settings.GeminiModel = remote.GeminiModel
	}
	if err := saveSettings(settings); err != nil {
		output.Warn("failed to persist resolved configuration", "error", err)
	}

	// Step 4: Probe the sheet and compare versions.
	client, err := newSheetClient(settings)
	if err != nil {
		return err
	}

	var sheetVersion string
	err = output.RunWithSpinner(ctx, func() error {
		var verr error
		sheetVersion, verr = client.Version(ctx)
		return verr
	}, output.WithTitle("Contacting the control sheet..."))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "control sheet unreachable", err)
	}
	if versionMismatch(Version, sheetVersion) {
		output.Warn("control sheet expects a different app version",
			"sheet", sheetVersion, "app", Version)
	}

	// Step 5: Pull everything in one pass.
	var result sheet.SyncResult
	err = output.RunWithSpinner(ctx, func() error {
		var serr error
		result, serr = client.SyncAll(ctx)
		return serr
	}, output.WithTitle("Syncing sites, config and ban lists..."))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "sync failed", err)
	}

	printSyncResult(result, source, sheetVersion, settings.ScriptURL)
	return nil
}

// versionMismatch reports whether the sheet-declared app version
// disagrees with this build. Dev builds and empty versions never
// mismatch, so local runs stay quiet.
func versionMismatch(local, remote string) bool {
	local = strings.TrimSpace(local)
	remote = strings.TrimSpace(remote)
	if local == "" || remote == "" || local == "dev" {
		return false
	}
	return !strings.EqualFold(local, remote)
}

// printSyncResult outputs the sync summary in text or JSON format.
func printSyncResult(res sheet.SyncResult, source model.ConfigSource, sheetVersion, scriptURL string) {
	if IsJSONOutput() {
		printSyncResultJSON(res, source, sheetVersion, scriptURL)
	} else {
		printSyncResultText(res, source, sheetVersion)
	}
}

// printSyncResultJSON outputs the sync summary as structured JSON.
func printSyncResultJSON(res sheet.SyncResult, source model.ConfigSource, sheetVersion, scriptURL string) {
	type resultJSON struct {
		ScriptURL         string            `json:"scriptUrl"`
		Source            string            `json:"source"`
		SheetVersion      string            `json:"sheetVersion"`
		AppVersion        string            `json:"appVersion"`
		Sites             []model.Site      `json:"sites"`
		Config            model.SheetConfig `json:"config"`
		BannedCount       int               `json:"bannedCount"`
		BannedDomainCount int               `json:"bannedDomainCount"`
	}

	result := resultJSON{
		ScriptURL:         scriptURL,
		Source:            source.String(),
		SheetVersion:      sheetVersion,
		AppVersion:        Version,
		Sites:             res.Sites,
		Config:            res.Config,
		BannedCount:       len(res.Banned),
		BannedDomainCount: len(res.BannedDomains),
	}
	if result.Sites == nil {
		result.Sites = []model.Site{}
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printSyncResultText outputs the sync summary as styled text.
func printSyncResultText(res sheet.SyncResult, source model.ConfigSource, sheetVersion string) {
	output.Println(output.FormatCheckmark("Synced with the control sheet"))
	output.Println("")
	output.Println("  " + output.FormatStatCard("Config source", source.Describe()))
	if sheetVersion != "" {
		output.Println("  " + output.FormatStatCard("Sheet version", sheetVersion))
	}
	output.Println("  " + output.FormatStatCard("Sites", strconv.Itoa(len(res.Sites))))
	output.Println("  " + output.FormatStatCard("Banned keywords", strconv.Itoa(len(res.Banned))))
	output.Println("  " + output.FormatStatCard("Banned domains", strconv.Itoa(len(res.BannedDomains))))

	output.Println("")
	output.Println("  " + output.StyleAction.Render("Campaign parameters"))
	cfg := res.Config
	output.Println("  " + output.FormatStatCard("Budget", cfg.Budget))
	output.Println("  " + output.FormatStatCard("Bid strategy", cfg.BidStrategy))
	output.Println("  " + output.FormatStatCard("Networks", cfg.Networks))
	output.Println("  " + output.FormatStatCard("Country", cfg.TargetCountry))
	output.Println("  " + output.FormatStatCard("Language", cfg.TargetLanguage))
	output.Println("  " + output.FormatStatCard("Match type", cfg.KeywordMatchType))
	output.Println("  " + output.FormatStatCard("Campaign days", strconv.Itoa(cfg.CampaignDays)))

	// The sheet can carry a broadcast message for operators. Show it
	// prominently after the summary.
	if msg := strings.TrimSpace(cfg.Message); msg != "" {
		output.Println("")
		output.Println("  " + output.StyleSummary.Render(msg))
	}
}
