// Package feedback — parser.go reads Google Ads upload result CSVs
// and extracts the rejected elements.
package feedback

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/progriv/progriv/internal/model"
)

// errorColumnPriority is the search order for the column holding the
// upload verdict. Editor and bulk upload exports disagree on naming.
var errorColumnPriority = []string{
	"results", "result", "error", "error_details",
	"comment", "validation_error", "policy", "status",
}

// errorColumnHints match any remaining candidate column by substring.
var errorColumnHints = []string{"error", "result", "comment", "policy", "validation"}

// errorIndicators flag a verdict cell as a rejection.
var errorIndicators = []string{
	"error", "rejected", "disapproved", "policy violation",
	"not eligible", "violation", "invalid", "too long",
	"restricted", "trademark", "misleading", "unacceptable",
	"failed", "couldn't", "couldn't create", "not allowed",
	"limit exceeded", "character limit", "exceeds",
}

// successIndicators flag a verdict cell as a pass, unless a hard
// error word appears alongside.
var successIndicators = []string{
	"successfully", "success", "created", "added", "updated",
	"approved", "eligible", "active", "enabled",
}

// hardErrorWords override a success indicator in the same cell, as in
// "created with policy violation".
var hardErrorWords = []string{"error", "rejected", "disapproved", "violation"}

// policyWords mark a verdict as general: every filled creative cell
// in the row is implicated, not just the one named in the text.
var policyWords = []string{
	"policy", "trademark", "misleading", "restricted",
	"disapproved", "rejected",
}

const (
	maxReasonLen     = 200
	maxOtherValueLen = 100
	sniffSize        = 2048
)

// ParseResult is the full analysis of one result file.
type ParseResult struct {
	// Errors holds every extracted rejection in file order.
	Errors []model.ParsedError `json:"errors"`

	// TotalRows, ErrorRows and SuccessRows count data rows.
	TotalRows   int `json:"totalRows"`
	ErrorRows   int `json:"errorRows"`
	SuccessRows int `json:"successRows"`

	// FileName is the base name of the parsed file.
	FileName string `json:"fileName"`
}

// byKind filters the extracted errors.
func (r ParseResult) byKind(kinds ...model.ErrorKind) []model.ParsedError {
	var out []model.ParsedError
	for _, e := range r.Errors {
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Keywords returns the rejected keywords.
func (r ParseResult) Keywords() []model.ParsedError { return r.byKind(model.KindKeyword) }

// Headlines returns the rejected headlines.
func (r ParseResult) Headlines() []model.ParsedError { return r.byKind(model.KindHeadline) }

// Descriptions returns the rejected descriptions.
func (r ParseResult) Descriptions() []model.ParsedError { return r.byKind(model.KindDescription) }

// Others returns everything that is not creative text or a keyword.
func (r ParseResult) Others() []model.ParsedError {
	return r.byKind(model.KindAd, model.KindCampaign, model.KindAdGroup, model.KindOther)
}

// DetectDelimiter sniffs the CSV delimiter from a sample: tab beats
// both comma and semicolon, semicolon beats comma, comma otherwise.
func DetectDelimiter(sample []byte) rune {
	commas := bytes.Count(sample, []byte{','})
	semis := bytes.Count(sample, []byte{';'})
	tabs := bytes.Count(sample, []byte{'\t'})

	if tabs > commas && tabs > semis {
		return '\t'
	}
	if semis > commas {
		return ';'
	}
	return ','
}

// ParseFile parses a Google Ads upload result CSV from disk.
func ParseFile(path string) (ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read results file: %w", err)
	}

	sample := data
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}

	return parse(data, filepath.Base(path), DetectDelimiter(sample))
}

// parse runs the row analysis. Ragged rows are tolerated, Editor
// exports pad unevenly.
func parse(data []byte, fileName string, delimiter rune) (ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return ParseResult{FileName: fileName}, nil
	}

	headers := records[0]
	errorCol := findErrorColumn(headers)

	result := ParseResult{FileName: fileName}

	for _, record := range records[1:] {
		result.TotalRows++
		row := zipRow(headers, record)

		// An empty verdict cell means the row went through clean.
		errorText := strings.TrimSpace(row[errorCol])
		if errorText == "" || !isErrorRow(errorText) {
			result.SuccessRows++
			continue
		}

		result.ErrorRows++
		result.Errors = append(result.Errors, extractRowErrors(row, errorText)...)
	}

	return result, nil
}

// zipRow pairs headers with record fields, ignoring overflow on
// either side.
func zipRow(headers, record []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(record) {
			row[h] = record[i]
		}
	}
	return row
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

// findErrorColumn locates the verdict column, by priority name first,
// then by substring hint. Returns the original header name, or ""
// when the file has no such column.
func findErrorColumn(headers []string) string {
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		normalized[normalizeHeader(h)] = h
	}

	for _, key := range errorColumnPriority {
		if orig, ok := normalized[key]; ok {
			return orig
		}
	}
	for norm, orig := range normalized {
		for _, hint := range errorColumnHints {
			if strings.Contains(norm, hint) {
				return orig
			}
		}
	}
	return ""
}

// isErrorRow decides whether a verdict cell describes a rejection.
// Empty cells never reach here.
func isErrorRow(text string) bool {
	lower := strings.ToLower(text)

	for _, s := range successIndicators {
		if strings.Contains(lower, s) && !containsAny(lower, hardErrorWords) {
			return false
		}
	}
	for _, e := range errorIndicators {
		if strings.Contains(lower, e) {
			return true
		}
	}
	// Google Ads leaves the cell empty for clean rows, so any other
	// text is treated as a rejection.
	return strings.TrimSpace(lower) != ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// extractReason cleans the verdict text into a short reason: the part
// after ": " when it is substantial, capped at 200 characters.
func extractReason(text string) string {
	text = strings.TrimSpace(text)

	if _, after, found := strings.Cut(text, ": "); found && len(after) > 10 {
		text = after
	}

	runes := []rune(text)
	if len(runes) > maxReasonLen {
		text = string(runes[:maxReasonLen]) + "..."
	}
	return text
}

// rowValue returns the first non-empty value among the column name
// spellings.
func rowValue(row map[string]string, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(row[n]); v != "" {
			return v
		}
	}
	return ""
}

// extractRowErrors dispatches one rejected row by its row type.
func extractRowErrors(row map[string]string, errorText string) []model.ParsedError {
	rowType := rowValue(row, "Row Type", "row type", "Type", "type")
	reason := extractReason(errorText)

	switch strings.ToLower(rowType) {
	case "keyword", "keywords":
		if kw := rowValue(row, "Keyword", "keyword"); kw != "" {
			return []model.ParsedError{{
				Kind:          model.KindKeyword,
				Value:         kw,
				Reason:        reason,
				OriginalError: errorText,
				RowType:       rowType,
			}}
		}
		return nil

	case "responsive search ad", "ad", "text ad":
		errs := extractCreativeErrors(row, errorText, "Headline", 15, model.KindHeadline)
		errs = append(errs, extractCreativeErrors(row, errorText, "Description", 4, model.KindDescription)...)
		if len(errs) == 0 {
			errs = append(errs, model.ParsedError{
				Kind:          model.KindAd,
				Value:         fmt.Sprintf("[%s] Ad error", rowType),
				Reason:        reason,
				OriginalError: errorText,
				RowType:       rowType,
			})
		}
		return errs

	case "campaign":
		value := rowValue(row, "Campaign")
		if value == "" {
			value = "Unknown campaign"
		}
		return []model.ParsedError{{
			Kind:          model.KindCampaign,
			Value:         value,
			Reason:        reason,
			OriginalError: errorText,
			RowType:       rowType,
		}}

	case "ad group", "ad_group":
		value := rowValue(row, "Ad group")
		if value == "" {
			value = "Unknown ad group"
		}
		return []model.ParsedError{{
			Kind:          model.KindAdGroup,
			Value:         value,
			Reason:        reason,
			OriginalError: errorText,
			RowType:       rowType,
		}}
	}

	// Untyped rows: a filled Keyword column still identifies the
	// element, otherwise keep the verdict itself.
	if rowType == "" {
		rowType = "Unknown"
	}
	if kw := rowValue(row, "Keyword", "keyword"); kw != "" {
		return []model.ParsedError{{
			Kind:          model.KindKeyword,
			Value:         kw,
			Reason:        reason,
			OriginalError: errorText,
			RowType:       rowType,
		}}
	}

	value := errorText
	if runes := []rune(value); len(runes) > maxOtherValueLen {
		value = string(runes[:maxOtherValueLen])
	}
	return []model.ParsedError{{
		Kind:          model.KindOther,
		Value:         value,
		Reason:        reason,
		OriginalError: errorText,
		RowType:       rowType,
	}}
}

// extractCreativeErrors pulls implicated creative cells out of an ad
// row. A cell is implicated when the verdict names it (by text or by
// column label) or when the verdict is a general policy one.
func extractCreativeErrors(row map[string]string, errorText, prefix string, count int, kind model.ErrorKind) []model.ParsedError {
	var errs []model.ParsedError
	errorLower := strings.ToLower(errorText)
	reason := extractReason(errorText)
	general := containsAny(errorLower, policyWords)

	for i := 1; i <= count; i++ {
		col := fmt.Sprintf("%s %d", prefix, i)
		val := strings.TrimSpace(row[col])
		if val == "" {
			continue
		}

		specific := strings.Contains(errorLower, strings.ToLower(val)) ||
			strings.Contains(errorLower, strings.ToLower(col))

		if specific || general {
			errs = append(errs, model.ParsedError{
				Kind:          kind,
				Value:         val,
				Reason:        reason,
				OriginalError: errorText,
				RowType:       "Responsive search ad",
			})
		}
	}
	return errs
}
