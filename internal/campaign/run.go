// Package campaign — run.go wires the full per-site generation cycle.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/progriv/progriv/internal/model"
)

// ErrBannedDomain marks a site skipped by the banned domain gate.
// Callers treat it as a per-site verdict, not a run failure.
var ErrBannedDomain = errors.New("banned domain")

// removedKeywordReason is the moderation queue label for keywords the
// banned list stripped during generation.
const removedKeywordReason = "Generic"

// Stats summarizes one generation run for display and logging.
type Stats struct {
	Keywords     int    `json:"keywords"`
	Headlines    int    `json:"headlines"`
	Descriptions int    `json:"descriptions"`
	Removed      int    `json:"removed"`
	Campaign     string `json:"campaign"`
	Dates        string `json:"dates"`
}

// Result is the outcome of one successful generation.
type Result struct {
	// FilePath is the written CSV.
	FilePath string `json:"filePath"`

	// RemovedKeywords are the banned-list hits, prepared for the
	// moderation queue.
	RemovedKeywords []model.Submission `json:"removedKeywords,omitempty"`

	// Stats carries the run summary.
	Stats Stats `json:"stats"`
}

// Generator runs the per-site cycle: domain gate, Gemini content,
// keyword filtering, fallback defaults, CSV file.
type Generator struct {
	gen          ContentGenerator
	outputFolder string
	now          func() time.Time
}

// NewGenerator creates a Generator writing CSVs into outputFolder.
func NewGenerator(gen ContentGenerator, outputFolder string) *Generator {
	return &Generator{
		gen:          gen,
		outputFolder: outputFolder,
		now:          time.Now,
	}
}

// Run generates one campaign CSV for the site. A site on the banned
// domain list returns ErrBannedDomain.
func (g *Generator) Run(ctx context.Context, site model.Site, cfg model.SheetConfig, banned, bannedDomains []string) (Result, error) {
	if IsBannedDomain(site.URL, bannedDomains) {
		return Result{}, fmt.Errorf("%s: %w", site.URL, ErrBannedDomain)
	}

	content, err := GenerateContent(ctx, g.gen, site)
	if err != nil {
		return Result{}, fmt.Errorf("generation failed for %s: %w", site.DisplayName(), err)
	}

	kept, removed := FilterKeywords(content.Keywords, banned)
	content.Keywords = kept

	removedSubs := make([]model.Submission, 0, len(removed))
	for _, kw := range removed {
		removedSubs = append(removedSubs, model.Submission{
			Kind:   model.KindKeyword,
			Value:  kw,
			Reason: removedKeywordReason,
		})
	}

	business := site.DisplayName()
	content = ApplyDefaults(content, business)

	if err := os.MkdirAll(g.outputFolder, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output folder: %w", err)
	}

	now := g.now()
	rows := BuildRows(site, content, cfg, now)
	path := filepath.Join(g.outputFolder, FileName(business, now))
	if err := WriteCSV(path, rows); err != nil {
		return Result{}, err
	}

	startDate := now.Format(dateLayout)
	endDate := now.AddDate(0, 0, cfg.CampaignDays).Format(dateLayout)

	return Result{
		FilePath:        path,
		RemovedKeywords: removedSubs,
		Stats: Stats{
			Keywords:     len(content.Keywords),
			Headlines:    len(content.Headlines),
			Descriptions: len(content.Descriptions),
			Removed:      len(removed),
			Campaign:     CampaignName(business),
			Dates:        startDate + " → " + endDate,
		},
	}, nil
}
