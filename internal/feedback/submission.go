// Package feedback — submission.go prepares parsed rejections for the
// sheet's moderation actions.
package feedback

import (
	"strings"

	"github.com/progriv/progriv/internal/model"
)

// maxOriginalErrorLen caps the raw verdict text sent upstream.
const maxOriginalErrorLen = 500

// reasonPrefix marks rows in the sheet as sourced from an upload
// result file rather than manual entry.
const reasonPrefix = "Google Ads: "

// ToSubmissions converts parsed rejections into the submit payload.
// Only keywords and creative text are bannable; duplicates are folded
// case-insensitively per kind.
func ToSubmissions(parsed ParseResult, action model.SubmissionAction) []model.Submission {
	type dedupeKey struct {
		kind  model.ErrorKind
		value string
	}
	seen := make(map[dedupeKey]bool)

	var subs []model.Submission
	for _, e := range parsed.Errors {
		if !e.Kind.Bannable() {
			continue
		}

		key := dedupeKey{kind: e.Kind, value: strings.ToLower(e.Value)}
		if seen[key] {
			continue
		}
		seen[key] = true

		original := e.OriginalError
		if runes := []rune(original); len(runes) > maxOriginalErrorLen {
			original = string(runes[:maxOriginalErrorLen])
		}

		subs = append(subs, model.Submission{
			Kind:          e.Kind,
			Value:         e.Value,
			Reason:        reasonPrefix + e.Reason,
			OriginalError: original,
			Action:        action,
		})
	}
	return subs
}
