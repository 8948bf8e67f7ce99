package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette — named constants for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color literals.
var (
	// ColorCyan is used for identifiable nouns: site names, file paths, tags.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "generated" and "online" statuses.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" status and pending moderation.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "banned" status.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for the "failed" and "offline" statuses.
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles — map domain concepts to visual presentation.
var (
	// StyleNoun styles identifiable nouns (site names, file names, farmer tags).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (generating, syncing, bundling).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (prefixes, separators, counters).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Status constants used across command output.
const (
	StatusOnline    = "online"
	StatusOffline   = "offline"
	StatusGenerated = "generated"
	StatusSkipped   = "skipped"
	StatusBanned    = "banned"
	StatusFailed    = "failed"
)

// StatusStyle returns the lipgloss style for a given status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusOnline, StatusGenerated:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusBanned:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusOffline, StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minSiteColumnWidth is the minimum width for the site column before the
// status suffix, so status words align across the generation report.
const minSiteColumnWidth = 40

// FormatSiteLine renders one site with a right-aligned, color-coded status.
//
// Format: s:<name>  <status>
// The "s:" prefix is dim, the name is cyan, and the status uses StatusStyle.
func FormatSiteLine(name, status string) string {
	padding := minSiteColumnWidth - len(name)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render("s:")
	styledName := StyleNoun.Render(name)
	styledStatus := StatusStyle(status).Render(status)

	return prefix + styledName + strings.Repeat(" ", padding) + styledStatus
}

// statCardLabelWidth aligns all stat card values in one column.
const statCardLabelWidth = 24

// FormatStatCard renders one statistics card line: a dim, padded label
// followed by a bold value.
func FormatStatCard(label, value string) string {
	padding := statCardLabelWidth - len([]rune(label))
	if padding < 1 {
		padding = 1
	}
	return StyleDim.Render(label) + strings.Repeat(" ", padding) + StyleSummary.Render(value)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatCross renders a red cross with a message for failed operations.
func FormatCross(msg string) string {
	cross := lipgloss.NewStyle().Foreground(ColorBoldRed).Render("✘")
	return cross + " " + msg
}

// FormatStep renders a pipeline step banner: a dim [n/total] counter
// followed by the bold step title.
func FormatStep(n, total int, title string) string {
	counter := StyleDim.Render(fmt.Sprintf("[%d/%d]", n, total))
	return counter + " " + StyleAction.Render(title)
}
