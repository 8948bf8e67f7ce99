// Package cli — stats.go implements the "progriv stats" command.
//
// Stats shows the generation counters the control sheet tracks per
// farmer: totals, rolling windows, average and rank. With --all it
// dumps the sheet-wide statistics instead.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// statsFlags holds the flag values for the stats command.
type statsFlags struct {
	all bool // --all: sheet-wide statistics instead of the farmer cards
}

// NewStatsCommand creates the "stats" cobra command.
func NewStatsCommand() *cobra.Command {
	flags := &statsFlags{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show generation statistics from the control sheet",
		Long: `Show your generation statistics as tracked by the control sheet.

The default view is the personal card set for the configured farmer
tag. --all shows the sheet-wide statistics across all farmers.

Examples:
  progriv stats
  progriv stats --all
  progriv stats --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Show sheet-wide statistics")

	return cmd
}

// runStats is the main logic function for the stats command.
func runStats(ctx context.Context, flags *statsFlags) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	client, err := newSheetClient(settings)
	if err != nil {
		return err
	}

	if flags.all {
		var all map[string]any
		err = output.RunWithSpinner(ctx, func() error {
			var serr error
			all, serr = client.AllStats(ctx)
			return serr
		}, output.WithTitle("Fetching sheet-wide statistics..."))
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to fetch statistics", err)
		}
		printAllStats(all)
		return nil
	}

	farmer, err := requireFarmerTag(settings)
	if err != nil {
		return err
	}

	var stats model.FarmerStats
	err = output.RunWithSpinner(ctx, func() error {
		var serr error
		stats, serr = client.FarmerStats(ctx, farmer)
		return serr
	}, output.WithTitle("Fetching statistics..."))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to fetch statistics", err)
	}

	printFarmerStats(farmer, stats)
	return nil
}

// printFarmerStats outputs the personal stat cards in text or JSON.
func printFarmerStats(farmer string, stats model.FarmerStats) {
	if IsJSONOutput() {
		type resultJSON struct {
			Farmer string            `json:"farmer"`
			Stats  model.FarmerStats `json:"stats"`
		}
		data, _ := json.MarshalIndent(resultJSON{Farmer: farmer, Stats: stats}, "", "  ")
		fmt.Println(string(data))
		return
	}

	output.Println(output.StyleAction.Render("Statistics for ") + output.StyleNoun.Render(farmer))
	output.Println("")
	output.Println("  " + output.FormatStatCard("Total generations", stats.Total))
	output.Println("  " + output.FormatStatCard("Today", stats.Today))
	output.Println("  " + output.FormatStatCard("Last 7 days", stats.Last7d))
	output.Println("  " + output.FormatStatCard("Last 30 days", stats.Last30d))
	output.Println("  " + output.FormatStatCard("Average per day", stats.AvgPerDay))
	output.Println("  " + output.FormatStatCard("Rank", stats.Rank))
	output.Println("  " + output.FormatStatCard("Last active", stats.LastActive))
}

// printAllStats outputs the sheet-wide statistics. The payload shape is
// owned by the Apps Script, so the text view renders whatever keys come
// back, sorted, one card per top-level entry.
func printAllStats(all map[string]any) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(all, "", "  ")
		fmt.Println(string(data))
		return
	}

	output.Println(output.StyleAction.Render("Sheet-wide statistics"))
	output.Println("")

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := all[k].(type) {
		case map[string]any:
			output.Println("  " + output.StyleNoun.Render(k))
			subKeys := make([]string, 0, len(v))
			for sk := range v {
				subKeys = append(subKeys, sk)
			}
			sort.Strings(subKeys)
			for _, sk := range subKeys {
				output.Println("    " + output.FormatStatCard(sk, fmt.Sprintf("%v", v[sk])))
			}
		default:
			output.Println("  " + output.FormatStatCard(k, fmt.Sprintf("%v", v)))
		}
	}
}
