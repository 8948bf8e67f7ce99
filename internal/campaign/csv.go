// Package campaign — csv.go turns ad content into a Google Ads Editor
// import file.
package campaign

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/progriv/progriv/internal/model"
)

const dateLayout = "2006-01-02"
const fileStampLayout = "20060102_150405"

// Row is one Editor CSV line. Rows are sparse: Editor infers the row
// type from which columns are filled, there is no "Row Type" column.
type Row map[string]string

// columnPriority is the Editor's expected column order. Columns absent
// from every row are dropped, unknown extras sort to the end.
var columnPriority = buildColumnPriority()

func buildColumnPriority() []string {
	cols := []string{
		"Campaign", "Campaign status", "Campaign type",
		"Networks", "Budget", "Bid strategy type",
		"Start date", "End date", "Location", "Language",
		"EU political ads",
		"Ad group", "Ad group status",
		"Keyword", "Keyword match type",
		"Ad type", "Ad status", "Final URL",
	}
	for i := 1; i <= 15; i++ {
		cols = append(cols, fmt.Sprintf("Headline %d", i))
	}
	for i := 1; i <= 4; i++ {
		cols = append(cols, fmt.Sprintf("Description %d", i))
	}
	return cols
}

// CampaignName builds the campaign name for a business.
func CampaignName(businessName string) string {
	return businessName + " - Search Campaign"
}

// AdGroupName builds the ad group name for a business.
func AdGroupName(businessName string) string {
	return businessName + " - Main"
}

// FileName builds the timestamped CSV file name for a business.
func FileName(businessName string, now time.Time) string {
	return fmt.Sprintf("ads_%s_%s.csv", SafeName(businessName), now.Format(fileStampLayout))
}

// FinalURL normalizes the site address into a landing page URL.
func FinalURL(siteURL string) string {
	if strings.HasPrefix(siteURL, "http") {
		return siteURL
	}
	return "https://" + siteURL
}

// BuildRows assembles the campaign, ad group, keyword and responsive
// search ad rows for one site.
func BuildRows(site model.Site, content model.AdContent, cfg model.SheetConfig, now time.Time) []Row {
	business := site.DisplayName()
	campaignName := CampaignName(business)
	adGroupName := AdGroupName(business)

	startDate := now.Format(dateLayout)
	endDate := now.AddDate(0, 0, cfg.CampaignDays).Format(dateLayout)

	rows := []Row{
		{
			"Campaign":          campaignName,
			"Campaign status":   "Enabled",
			"Campaign type":     "Search",
			"Networks":          cfg.Networks,
			"Budget":            cfg.Budget,
			"Bid strategy type": cfg.BidStrategy,
			"Start date":        startDate,
			"End date":          endDate,
			"Location":          cfg.TargetCountry,
			"Language":          cfg.TargetLanguage,
			"EU political ads":  cfg.EUPoliticalAds,
		},
		{
			"Campaign":        campaignName,
			"Ad group":        adGroupName,
			"Ad group status": "Enabled",
		},
	}

	keywords := content.Keywords
	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}
	for _, kw := range keywords {
		rows = append(rows, Row{
			"Campaign":           campaignName,
			"Ad group":           adGroupName,
			"Keyword":            kw,
			"Keyword match type": cfg.MatchType(),
		})
	}

	adRow := Row{
		"Campaign":  campaignName,
		"Ad group":  adGroupName,
		"Ad type":   "Responsive search ad",
		"Ad status": "Enabled",
		"Final URL": FinalURL(site.URL),
	}
	for i, h := range capSlice(content.Headlines, MaxHeadlines) {
		adRow[fmt.Sprintf("Headline %d", i+1)] = truncateRunes(h, MaxHeadlineLen)
	}
	for i, d := range capSlice(content.Descriptions, MaxDescriptions) {
		adRow[fmt.Sprintf("Description %d", i+1)] = truncateRunes(d, MaxDescriptionLen)
	}
	rows = append(rows, adRow)

	return rows
}

// Columns returns the header for the given rows: priority columns that
// appear somewhere, then any stragglers in sorted order.
func Columns(rows []Row) []string {
	present := make(map[string]bool)
	for _, row := range rows {
		for col := range row {
			present[col] = true
		}
	}

	var columns []string
	for _, col := range columnPriority {
		if present[col] {
			columns = append(columns, col)
			delete(present, col)
		}
	}

	var extras []string
	for col := range present {
		extras = append(extras, col)
	}
	sort.Strings(extras)
	return append(columns, extras...)
}

// WriteCSV writes the rows to path with CRLF line endings, the format
// Editor produces itself on export.
func WriteCSV(path string, rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	columns := Columns(rows)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to render CSV: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

func capSlice(values []string, max int) []string {
	if len(values) > max {
		return values[:max]
	}
	return values
}

// truncateRunes hard-cuts s to at most max runes. Creative text is
// already word-truncated by validation; this is the final guard before
// the cell is written.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
