// Package cli — generate.go implements the "progriv generate" command.
//
// Generate is the core operator workflow. For each selected site it asks
// Gemini for campaign content, filters it against the ban lists, writes a
// Google Ads Editor CSV into the output folder, logs the generation to
// the control sheet, and finally submits the keywords the banned list
// removed so moderation can review them.
//
// Site selection:
//   - default: one random site from the synced list
//   - --site:  the named site (matched by URL or business name)
//   - --all:   every site, with a progress bar across the loop
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/campaign"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// generateFlags holds the flag values for the generate command.
type generateFlags struct {
	site string // --site: generate for this site only
	all  bool   // --all: generate for every synced site
}

// NewGenerateCommand creates the "generate" cobra command.
func NewGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Google Ads Editor CSV campaigns with Gemini",
		Long: `Generate campaign CSV files for one or more sites.

Content comes from Gemini, gets validated against the Ads limits,
filtered by the banned keyword list, and written as a Google Ads Editor
import file into the output folder. Every generation is logged to the
control sheet; removed keywords are submitted for moderation.

Examples:
  progriv generate
  progriv generate --site fitlife.example.com
  progriv generate --all`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.site, "site", "", "Generate for a single site (URL or name)")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Generate for every synced site")

	return cmd
}

// siteReport records the outcome of one site in the generation loop.
type siteReport struct {
	Site     model.Site     `json:"site"`
	Status   string         `json:"status"`
	FilePath string         `json:"filePath,omitempty"`
	Stats    campaign.Stats `json:"stats,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// runGenerate is the main orchestration function for the generate command.
func runGenerate(ctx context.Context, flags *generateFlags) error {
	// Step 1: Load settings and check the prerequisites. Generation
	// needs a farmer tag (for sheet attribution) and a Gemini key.
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	farmer, err := requireFarmerTag(settings)
	if err != nil {
		return err
	}
	if settings.GeminiKey == "" {
		return model.NewCLIError(model.ExitConfigError,
			"no Gemini API key configured, run `progriv sync` first")
	}

	client, err := newSheetClient(settings)
	if err != nil {
		return err
	}

	// Step 2: Fetch everything fresh. The loop must see the current
	// ban lists, not a cached copy from an earlier command.
	var data sheetData
	err = output.RunWithSpinner(ctx, func() error {
		res, serr := client.SyncAll(ctx)
		if serr != nil {
			return serr
		}
		data = sheetData{
			sites:         res.Sites,
			config:        res.Config,
			banned:        res.Banned,
			bannedDomains: res.BannedDomains,
		}
		return nil
	}, output.WithTitle("Fetching sites and ban lists..."))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to fetch sheet data", err)
	}

	// Step 3: Select the target sites.
	targets, err := selectSites(data.sites, flags)
	if err != nil {
		return err
	}
	VerboseLog("Generating for %d site(s)", len(targets))

	// Step 4: Build the Gemini-backed generator.
	gen, err := campaign.NewGeminiClient(ctx, settings.GeminiKey, settings.GeminiModel)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to initialize the Gemini client", err)
	}
	generator := campaign.NewGenerator(gen, settings.OutputFolder)

	// Step 5: The generation loop. One site failing or being banned
	// never stops the loop, the verdict lands in the report instead.
	showBar := !IsJSONOutput() && output.IsTTY() && len(targets) > 1
	var bar *progressbar.ProgressBar
	if showBar {
		bar = progressbar.NewOptions(len(targets),
			progressbar.OptionSetDescription("generating"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		reports []siteReport
		removed []model.Submission
	)
	for _, site := range targets {
		reports = append(reports, generateSite(ctx, generator, client, farmer, site, data, &removed))
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// Step 6: Submit the removed keywords in one batch. Best effort,
	// the CSVs are already on disk.
	if len(removed) > 0 {
		if err := client.SubmitErrors(ctx, farmer, removed); err != nil {
			output.Warn("failed to submit removed keywords for moderation", "error", err)
		} else {
			VerboseLog("Submitted %d removed keyword(s) for moderation", len(removed))
		}
	}

	// Step 7: Report.
	printGenerateResult(reports, removed, settings.OutputFolder)

	if countStatus(reports, output.StatusGenerated) == 0 {
		return model.NewCLIError(model.ExitGeneralError, "no campaigns were generated")
	}
	return nil
}

// sheetData carries the freshly synced inputs of the generation loop.
type sheetData struct {
	sites         []model.Site
	config        model.SheetConfig
	banned        []string
	bannedDomains []string
}

// generateSite runs the full cycle for one site and returns its report.
// Removed keywords are appended to the shared moderation batch.
func generateSite(ctx context.Context, generator *campaign.Generator, client generationLogger, farmer string, site model.Site, data sheetData, removed *[]model.Submission) siteReport {
	report := siteReport{Site: site}

	res, err := generator.Run(ctx, site, data.config, data.banned, data.bannedDomains)
	switch {
	case errors.Is(err, campaign.ErrBannedDomain):
		report.Status = output.StatusBanned
		return report
	case err != nil:
		report.Status = output.StatusFailed
		report.Error = err.Error()
		return report
	}

	report.Status = output.StatusGenerated
	report.FilePath = res.FilePath
	report.Stats = res.Stats
	*removed = append(*removed, res.RemovedKeywords...)

	// Log the generation so the sheet counts it for this farmer.
	// A logging failure does not invalidate the generated CSV.
	if err := client.LogGeneration(ctx, farmer, site.URL); err != nil {
		output.Warn("failed to log generation", "site", site.URL, "error", err)
	}
	return report
}

// generationLogger is the slice of the sheet client the per-site cycle
// needs. Tests substitute a recording fake.
type generationLogger interface {
	LogGeneration(ctx context.Context, farmer, siteURL string) error
}

// selectSites resolves the --site/--all flags against the synced list.
func selectSites(sites []model.Site, flags *generateFlags) ([]model.Site, error) {
	if len(sites) == 0 {
		return nil, model.NewCLIError(model.ExitGeneralError,
			"the control sheet lists no sites, nothing to generate")
	}

	if flags.all {
		return sites, nil
	}

	if flags.site != "" {
		site, ok := matchSite(sites, flags.site)
		if !ok {
			return nil, model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("site %q not found in the synced list (run `progriv sync`?)", flags.site))
		}
		return []model.Site{site}, nil
	}

	// Default: one random site, mirroring how operators spread work
	// across the farm without coordinating.
	return []model.Site{sites[rand.IntN(len(sites))]}, nil
}

// matchSite finds a site by URL or business name. Exact matches win
// over substring matches; both are case-insensitive.
func matchSite(sites []model.Site, query string) (model.Site, bool) {
	for _, s := range sites {
		if strings.EqualFold(s.URL, query) || strings.EqualFold(s.Name, query) {
			return s, true
		}
	}

	q := strings.ToLower(query)
	for _, s := range sites {
		if strings.Contains(strings.ToLower(s.URL), q) ||
			strings.Contains(strings.ToLower(s.Name), q) {
			return s, true
		}
	}
	return model.Site{}, false
}

// countStatus counts reports with the given status.
func countStatus(reports []siteReport, status string) int {
	n := 0
	for _, r := range reports {
		if r.Status == status {
			n++
		}
	}
	return n
}

// printGenerateResult outputs the generation report in text or JSON.
func printGenerateResult(reports []siteReport, removed []model.Submission, outputFolder string) {
	if IsJSONOutput() {
		printGenerateResultJSON(reports, removed, outputFolder)
	} else {
		printGenerateResultText(reports, removed, outputFolder)
	}
}

// printGenerateResultJSON outputs the generation report as JSON.
func printGenerateResultJSON(reports []siteReport, removed []model.Submission, outputFolder string) {
	type resultJSON struct {
		OutputFolder    string       `json:"outputFolder"`
		Results         []siteReport `json:"results"`
		Generated       int          `json:"generated"`
		RemovedKeywords int          `json:"removedKeywords"`
	}

	result := resultJSON{
		OutputFolder:    outputFolder,
		Results:         reports,
		Generated:       countStatus(reports, output.StatusGenerated),
		RemovedKeywords: len(removed),
	}
	if result.Results == nil {
		result.Results = []siteReport{}
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printGenerateResultText outputs the generation report as styled text:
// one status line per site, then the summary block.
func printGenerateResultText(reports []siteReport, removed []model.Submission, outputFolder string) {
	for _, r := range reports {
		output.Println(output.FormatSiteLine(r.Site.DisplayName(), r.Status))
		if r.Status == output.StatusGenerated {
			output.Println("    " + output.StyleDim.Render(r.FilePath))
			output.Println("    " + output.StyleDim.Render(fmt.Sprintf(
				"%d keywords, %d headlines, %d descriptions (%s)",
				r.Stats.Keywords, r.Stats.Headlines, r.Stats.Descriptions, r.Stats.Dates)))
		}
		if r.Error != "" {
			output.Println("    " + output.StyleDim.Render(r.Error))
		}
	}

	generated := countStatus(reports, output.StatusGenerated)
	output.Println("")
	if generated > 0 {
		output.Println(output.FormatCheckmark(fmt.Sprintf(
			"Generated %d campaign file(s) in %s", generated, outputFolder)))
	} else {
		output.Println(output.FormatCross("No campaigns generated"))
	}
	if banned := countStatus(reports, output.StatusBanned); banned > 0 {
		output.Println("  " + output.FormatStatCard("Banned domains skipped", strconv.Itoa(banned)))
	}
	if failed := countStatus(reports, output.StatusFailed); failed > 0 {
		output.Println("  " + output.FormatStatCard("Failed", strconv.Itoa(failed)))
	}
	if len(removed) > 0 {
		output.Println("  " + output.FormatStatCard("Keywords sent to moderation", strconv.Itoa(len(removed))))
	}
}
