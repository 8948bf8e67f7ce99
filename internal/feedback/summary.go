// Package feedback — summary.go renders the plain-text parse report.
package feedback

import (
	"fmt"
	"strings"

	"github.com/progriv/progriv/internal/model"
)

// Per-section caps keep the report readable on big result files.
const (
	summaryMaxKeywords  = 20
	summaryMaxCreatives = 10
	summaryValueWidth   = 50
	summaryReasonWidth  = 60
)

// FormatSummary renders the parse result as a plain-text report.
func FormatSummary(parsed ParseResult) string {
	keywords := parsed.Keywords()
	headlines := parsed.Headlines()
	descriptions := parsed.Descriptions()
	others := parsed.Others()

	lines := []string{
		fmt.Sprintf("File: %s", parsed.FileName),
		fmt.Sprintf("Total rows: %d", parsed.TotalRows),
		fmt.Sprintf("Clean rows: %d", parsed.SuccessRows),
		fmt.Sprintf("Rejected rows: %d", parsed.ErrorRows),
		"",
		fmt.Sprintf("Rejected keywords: %d", len(keywords)),
		fmt.Sprintf("Rejected headlines: %d", len(headlines)),
		fmt.Sprintf("Rejected descriptions: %d", len(descriptions)),
		fmt.Sprintf("Other errors: %d", len(others)),
	}

	lines = appendSection(lines, "Rejected keywords", keywords, summaryMaxKeywords, false)
	lines = appendSection(lines, "Rejected headlines", headlines, summaryMaxCreatives, false)
	lines = appendSection(lines, "Rejected descriptions", descriptions, summaryMaxCreatives, true)

	total := len(keywords) + len(headlines) + len(descriptions)
	lines = append(lines, "", fmt.Sprintf("Ready for submission: %d", total))

	return strings.Join(lines, "\n")
}

// appendSection adds one capped list of rejections to the report.
func appendSection(lines []string, title string, errs []model.ParsedError, max int, shortenValue bool) []string {
	if len(errs) == 0 {
		return lines
	}

	lines = append(lines, "", fmt.Sprintf("-- %s --", title))
	for i, e := range errs {
		if i >= max {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(errs)-max))
			break
		}
		value := e.Value
		if shortenValue {
			value = truncate(value, summaryValueWidth)
		}
		lines = append(lines, fmt.Sprintf("  %s  |  %s", value, truncate(e.Reason, summaryReasonWidth)))
	}
	return lines
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
