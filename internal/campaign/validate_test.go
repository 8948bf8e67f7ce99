package campaign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFilterKeywords tests the bidirectional banned-list matching.
func TestFilterKeywords(t *testing.T) {
	tests := []struct {
		name        string
		keywords    []string
		banned      []string
		wantKept    []string
		wantRemoved []string
	}{
		{
			name:        "keyword containing banned term",
			keywords:    []string{"cheap gym deals", "personal training"},
			banned:      []string{"cheap"},
			wantKept:    []string{"personal training"},
			wantRemoved: []string{"cheap gym deals"},
		},
		{
			name:        "keyword contained in banned term",
			keywords:    []string{"gym", "yoga studio"},
			banned:      []string{"gym membership scam"},
			wantKept:    []string{"yoga studio"},
			wantRemoved: []string{"gym"},
		},
		{
			name:        "case insensitive",
			keywords:    []string{"CHEAP Gym"},
			banned:      []string{"cheap"},
			wantKept:    nil,
			wantRemoved: []string{"CHEAP Gym"},
		},
		{
			name:        "nothing banned",
			keywords:    []string{"fitness classes", "crossfit box"},
			banned:      nil,
			wantKept:    []string{"fitness classes", "crossfit box"},
			wantRemoved: nil,
		},
		{
			name:        "original order preserved",
			keywords:    []string{"a fitness", "bad word", "b fitness"},
			banned:      []string{"bad word"},
			wantKept:    []string{"a fitness", "b fitness"},
			wantRemoved: []string{"bad word"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, removed := FilterKeywords(tt.keywords, tt.banned)
			assert.Equal(t, tt.wantKept, kept)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

// TestIsBannedDomain tests scheme and path stripping plus the
// bidirectional match.
func TestIsBannedDomain(t *testing.T) {
	tests := []struct {
		name    string
		siteURL string
		banned  []string
		want    bool
	}{
		{
			name:    "plain match",
			siteURL: "spamgym.com",
			banned:  []string{"spamgym.com"},
			want:    true,
		},
		{
			name:    "scheme and www stripped",
			siteURL: "https://www.spamgym.com/pricing",
			banned:  []string{"spamgym.com"},
			want:    true,
		},
		{
			name:    "domain contained in banned entry",
			siteURL: "gym.co",
			banned:  []string{"badgym.com"},
			want:    true,
		},
		{
			name:    "clean domain",
			siteURL: "https://goodgym.example",
			banned:  []string{"spamgym.com"},
			want:    false,
		},
		{
			name:    "empty banned list",
			siteURL: "anything.com",
			banned:  nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBannedDomain(tt.siteURL, tt.banned))
		})
	}
}

// TestValidateHeadlines tests truncation, dedupe, forbidden words and
// the size caps.
func TestValidateHeadlines(t *testing.T) {
	t.Run("long headline truncated at word boundary", func(t *testing.T) {
		got := ValidateHeadlines([]string{"Join The Premier Fitness Studio Downtown"})
		assert.Equal(t, []string{"Join The Premier Fitness"}, got)
	})

	t.Run("duplicates dropped case insensitively", func(t *testing.T) {
		got := ValidateHeadlines([]string{"Train With Us", "TRAIN WITH US", "Another Headline"})
		assert.Equal(t, []string{"Train With Us", "Another Headline"}, got)
	})

	t.Run("forbidden words dropped", func(t *testing.T) {
		got := ValidateHeadlines([]string{
			"Best Gym In Town",
			"Cheap Memberships",
			"Free Trial Class",
			"#1 Rated Studio",
			"Guaranteed Results",
			"Solid Training Plans",
		})
		assert.Equal(t, []string{"Solid Training Plans"}, got)
	})

	t.Run("forbidden match is substring based", func(t *testing.T) {
		// "Freedom" contains "free" and the filter does not split words.
		got := ValidateHeadlines([]string{"Freedom Fitness Club"})
		assert.Empty(t, got)
	})

	t.Run("too short dropped", func(t *testing.T) {
		got := ValidateHeadlines([]string{"Gym", "Fit Life Now"})
		assert.Equal(t, []string{"Fit Life Now"}, got)
	})

	t.Run("capped at eight", func(t *testing.T) {
		var in []string
		for i := 0; i < 12; i++ {
			in = append(in, "Headline Number "+strings.Repeat("x", i+1))
		}
		assert.Len(t, ValidateHeadlines(in), MaxHeadlines)
	})
}

// TestValidateDescriptions tests truncation and the size caps.
func TestValidateDescriptions(t *testing.T) {
	t.Run("long description truncated at word boundary", func(t *testing.T) {
		long := strings.Repeat("word ", 30) // 150 chars
		got := ValidateDescriptions([]string{long})
		if assert.Len(t, got, 1) {
			assert.LessOrEqual(t, len(got[0]), MaxDescriptionLen)
			assert.False(t, strings.HasSuffix(got[0], " "))
		}
	})

	t.Run("too short dropped", func(t *testing.T) {
		got := ValidateDescriptions([]string{"Tiny text.", "Join our supportive fitness community today!"})
		assert.Equal(t, []string{"Join our supportive fitness community today!"}, got)
	})

	t.Run("capped at two", func(t *testing.T) {
		in := []string{
			"First description that is long enough to keep.",
			"Second description that is long enough to keep.",
			"Third description that is long enough to keep.",
		}
		got := ValidateDescriptions(in)
		assert.Equal(t, in[:2], got)
	})
}

// TestSafeName tests filename sanitization, including non-ASCII
// letters which must survive.
func TestSafeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii", in: "Cool Gym", want: "Cool_Gym"},
		{name: "punctuation", in: "Gym & Spa, Inc.", want: "Gym___Spa__Inc_"},
		{name: "cyrillic letters survive", in: "Прогрів Gym", want: "Прогрів_Gym"},
		{name: "digits survive", in: "24-7 Fitness", want: "24_7_Fitness"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}
