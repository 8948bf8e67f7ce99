// Package cli — feedback.go implements the "progriv feedback" command.
//
// Feedback closes the loop with Google Ads: the operator exports the
// posting results from Ads Editor, this command extracts the rejected
// elements and submits them to the control sheet, either straight onto
// the banned list (auto_ban) or into the moderation queue (pending).
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/progriv/progriv/internal/feedback"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
	"github.com/progriv/progriv/internal/sheet"
)

// feedbackFlags holds the flag values for the feedback command.
type feedbackFlags struct {
	action string // --action: auto_ban or pending
	yes    bool   // --yes: skip the confirmation prompt
}

// NewFeedbackCommand creates the "feedback" cobra command.
func NewFeedbackCommand() *cobra.Command {
	flags := &feedbackFlags{}

	cmd := &cobra.Command{
		Use:   "feedback <results-file>",
		Short: "Submit Ads Editor rejections to the control sheet",
		Long: `Parse a Google Ads Editor results export (CSV or TSV), show the
rejected keywords, headlines and descriptions it contains, and submit
them to the control sheet.

--action auto_ban adds keywords straight to the banned list;
--action pending queues everything for moderation instead.

Examples:
  progriv feedback results.csv
  progriv feedback --action pending export.tsv
  progriv feedback --yes results.csv`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.action, "action", model.ActionAutoBan.String(),
		"Submission action: auto_ban or pending")
	cmd.Flags().BoolVar(&flags.yes, "yes", false, "Submit without asking for confirmation")

	return cmd
}

// runFeedback is the main logic function for the feedback command.
func runFeedback(ctx context.Context, path string, flags *feedbackFlags) error {
	// Step 1: Validate the action before doing any work.
	action, err := model.ParseSubmissionAction(flags.action)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "invalid --action value", err)
	}

	// Step 2: Parse the export.
	parsed, err := feedback.ParseFile(path)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to parse the results file", err)
	}
	VerboseLog("Parsed %d row(s), %d with errors", parsed.TotalRows, parsed.ErrorRows)

	if len(parsed.Errors) == 0 {
		printFeedbackResult(parsed, nil, action)
		return nil
	}

	// Step 3: Show what was found before asking to submit.
	if !IsJSONOutput() {
		output.Print(feedback.FormatSummary(parsed))
	}

	subs := feedback.ToSubmissions(parsed, action)
	if len(subs) == 0 {
		printFeedbackResult(parsed, nil, action)
		return nil
	}

	// Step 4: Confirm. Submitting rewrites sheet state for the whole
	// farm, so a manual run gets a prompt; --yes covers scripting.
	prompt := fmt.Sprintf("Submit %d element(s) with action %q?", len(subs), action)
	if !confirm(prompt, flags.yes) {
		return model.NewCLIError(model.ExitUserCancelled, "submission cancelled")
	}

	// Step 5: Submit.
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	farmer, err := requireFarmerTag(settings)
	if err != nil {
		return err
	}
	client, err := newSheetClient(settings)
	if err != nil {
		return err
	}

	var receipt sheet.SubmitReceipt
	err = output.RunWithSpinner(ctx, func() error {
		var serr error
		receipt, serr = client.SubmitAdErrors(ctx, farmer, subs)
		return serr
	}, output.WithTitle("Submitting rejections..."))
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to submit rejections", err)
	}

	printFeedbackResult(parsed, &receipt, action)
	return nil
}

// printFeedbackResult outputs the feedback outcome in text or JSON.
// A nil receipt means nothing was submitted.
func printFeedbackResult(parsed feedback.ParseResult, receipt *sheet.SubmitReceipt, action model.SubmissionAction) {
	if IsJSONOutput() {
		printFeedbackResultJSON(parsed, receipt, action)
	} else {
		printFeedbackResultText(parsed, receipt)
	}
}

// printFeedbackResultJSON outputs the parse summary and receipt as one
// JSON document.
func printFeedbackResultJSON(parsed feedback.ParseResult, receipt *sheet.SubmitReceipt, action model.SubmissionAction) {
	type resultJSON struct {
		File         string               `json:"file"`
		TotalRows    int                  `json:"totalRows"`
		ErrorRows    int                  `json:"errorRows"`
		SuccessRows  int                  `json:"successRows"`
		Keywords     int                  `json:"keywords"`
		Headlines    int                  `json:"headlines"`
		Descriptions int                  `json:"descriptions"`
		Action       string               `json:"action"`
		Receipt      *sheet.SubmitReceipt `json:"receipt,omitempty"`
	}

	result := resultJSON{
		File:         parsed.FileName,
		TotalRows:    parsed.TotalRows,
		ErrorRows:    parsed.ErrorRows,
		SuccessRows:  parsed.SuccessRows,
		Keywords:     len(parsed.Keywords()),
		Headlines:    len(parsed.Headlines()),
		Descriptions: len(parsed.Descriptions()),
		Action:       action.String(),
		Receipt:      receipt,
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printFeedbackResultText outputs the submission outcome as styled text.
// The parse summary itself was already printed before the prompt.
func printFeedbackResultText(parsed feedback.ParseResult, receipt *sheet.SubmitReceipt) {
	if len(parsed.Errors) == 0 {
		output.Println(output.FormatCheckmark(fmt.Sprintf(
			"No rejections found in %s (%d rows)", parsed.FileName, parsed.TotalRows)))
		return
	}
	if receipt == nil {
		output.Println(output.FormatCheckmark("Nothing bannable to submit"))
		return
	}

	output.Println(output.FormatCheckmark("Rejections submitted"))
	output.Println("  " + output.FormatStatCard("Auto-banned", strconv.Itoa(receipt.AutoBanned)))
	output.Println("  " + output.FormatStatCard("Sent to moderation", strconv.Itoa(receipt.PendingAdded)))
	output.Println("  " + output.FormatStatCard("Duplicates skipped", strconv.Itoa(receipt.Duplicates)))
}
