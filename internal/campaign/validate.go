// Package campaign — validate.go holds the content filters applied
// between Gemini output and the CSV.
package campaign

import (
	"strings"
	"unicode"
)

// Google Ads creative limits.
const (
	MaxHeadlineLen    = 30
	MaxDescriptionLen = 90
	MaxHeadlines      = 8
	MaxDescriptions   = 2
	MaxKeywords       = 10

	minHeadlineLen    = 5
	minDescriptionLen = 20
	minKeywords       = 5
)

// forbiddenHeadlineWords trip Google Ads superlative policy checks.
// Matched as substrings, same silent rule the moderators apply.
var forbiddenHeadlineWords = []string{"best", "cheap", "free", "#1", "guaranteed"}

// FilterKeywords splits keywords into kept and removed against the
// banned list. Matching is case-insensitive and bidirectional: a
// keyword containing a banned term or contained in one is removed.
func FilterKeywords(keywords, banned []string) (kept, removed []string) {
	bannedLower := make([]string, len(banned))
	for i, b := range banned {
		bannedLower[i] = strings.ToLower(b)
	}

	for _, kw := range keywords {
		kwLower := strings.ToLower(strings.TrimSpace(kw))
		isBanned := false
		for _, b := range bannedLower {
			if b == "" {
				continue
			}
			if strings.Contains(kwLower, b) || strings.Contains(b, kwLower) {
				isBanned = true
				break
			}
		}
		if isBanned {
			removed = append(removed, kw)
		} else {
			kept = append(kept, kw)
		}
	}
	return kept, removed
}

// IsBannedDomain reports whether the site's domain matches the banned
// domain list. The scheme, www prefix and path are stripped before the
// bidirectional substring match.
func IsBannedDomain(siteURL string, bannedDomains []string) bool {
	clean := strings.ToLower(siteURL)
	clean = strings.TrimPrefix(clean, "https://")
	clean = strings.TrimPrefix(clean, "http://")
	clean = strings.TrimPrefix(clean, "www.")
	domain, _, _ := strings.Cut(clean, "/")
	if domain == "" {
		return false
	}

	for _, bd := range bannedDomains {
		bdLower := strings.ToLower(bd)
		if bdLower == "" {
			continue
		}
		if strings.Contains(domain, bdLower) || strings.Contains(bdLower, domain) {
			return true
		}
	}
	return false
}

// ValidateHeadlines enforces the headline rules: word-boundary
// truncation to 30 characters, case-insensitive dedupe, no forbidden
// superlatives, minimum length 5, at most 8 survivors.
func ValidateHeadlines(headlines []string) []string {
	var validated []string
	seen := make(map[string]bool)

	for _, h := range headlines {
		h = truncateAtWord(strings.TrimSpace(h), MaxHeadlineLen)
		lower := strings.ToLower(h)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		hasForbidden := false
		for _, f := range forbiddenHeadlineWords {
			if strings.Contains(lower, f) {
				hasForbidden = true
				break
			}
		}
		if !hasForbidden && len([]rune(h)) >= minHeadlineLen {
			validated = append(validated, h)
		}
	}

	if len(validated) > MaxHeadlines {
		validated = validated[:MaxHeadlines]
	}
	return validated
}

// ValidateDescriptions enforces the description rules: word-boundary
// truncation to 90 characters, minimum length 20, at most 2 survivors.
func ValidateDescriptions(descriptions []string) []string {
	var validated []string
	for _, d := range descriptions {
		d = truncateAtWord(strings.TrimSpace(d), MaxDescriptionLen)
		if len([]rune(d)) >= minDescriptionLen {
			validated = append(validated, d)
		}
	}
	if len(validated) > MaxDescriptions {
		validated = validated[:MaxDescriptions]
	}
	return validated
}

// truncateAtWord cuts s to at most max runes, then drops the trailing
// partial word. A cut with no space inside is returned whole.
func truncateAtWord(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx >= 0 {
		cut = cut[:idx]
	}
	return cut
}

// SafeName converts a business name into a filename-safe token:
// letters and digits survive, everything else becomes an underscore.
func SafeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
