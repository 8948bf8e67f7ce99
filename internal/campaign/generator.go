// Package campaign — generator.go produces ad content with Gemini and
// applies the banned-list filters and fallback defaults.
package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// promptTemplate is the campaign brief sent to Gemini. The two
// placeholders are the website URL and the business name.
const promptTemplate = `You are an ELITE Google Ads specialist with 15+ years experience.

TASK: Generate Google Ads Search Campaign content for a FITNESS/GYM business.

BUSINESS INFO:
- Website: %s
- Business name: %s
- Industry: Fitness, Gym, Personal Training
- Location: Washington DC area

STRICT REQUIREMENTS:

KEYWORDS (exactly 10):
   ALLOWED: Specific fitness terms, location + service, brand variations
   FORBIDDEN: "quality service", "professional team", "best prices", "affordable", "guaranteed", competitor names

HEADLINES (exactly 8, each MAX 30 characters):
   ALLOWED: Action + brand, location + service, benefit
   FORBIDDEN: "Best", "Cheapest", "#1", "Free" (unless actually free), ALL CAPS

DESCRIPTIONS (exactly 2, each MAX 90 characters):
   ALLOWED: Community, training, sign up CTA
   FORBIDDEN: "Best prices", "Professional team", "Quality service"

OUTPUT FORMAT (ONLY JSON, no markdown):
{"keywords": ["kw1", ...], "headlines": ["H1", ...], "descriptions": ["D1", "D2"]}

Count characters carefully! Headlines MAX 30, Descriptions MAX 90.`

const (
	generationTemperature     = 0.5
	generationMaxOutputTokens = 2000
)

// ContentGenerator is the single model call the campaign flow needs.
// Tests substitute a canned implementation.
type ContentGenerator interface {
	GenerateCampaignJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiClient generates campaign content through the Gemini API.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient creates a Gemini-backed ContentGenerator.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: modelName}, nil
}

// GenerateCampaignJSON sends the prompt and returns the raw model
// text, which should be a single JSON object.
func (g *GeminiClient) GenerateCampaignJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](generationTemperature),
			MaxOutputTokens:  generationMaxOutputTokens,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// BuildPrompt fills the campaign brief for one site.
func BuildPrompt(site model.Site) string {
	return fmt.Sprintf(promptTemplate, site.URL, site.DisplayName())
}

// ParseContent extracts AdContent from the raw model text. Markdown
// code fences are stripped when present, older models wrap JSON in
// them despite instructions.
func ParseContent(raw string) (model.AdContent, error) {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```") {
		clean = stripCodeFence(clean)
	}

	var content model.AdContent
	if err := json.Unmarshal([]byte(clean), &content); err != nil {
		return model.AdContent{}, fmt.Errorf("invalid content JSON: %w", err)
	}
	if content.Keywords == nil || content.Headlines == nil || content.Descriptions == nil {
		return model.AdContent{}, fmt.Errorf("content JSON missing keywords, headlines or descriptions")
	}
	return content, nil
}

// stripCodeFence cuts a fenced block down to the JSON object between
// the first line opening a brace and the last line closing one.
func stripCodeFence(s string) string {
	lines := strings.Split(s, "\n")
	start, end := -1, -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start == -1 && strings.HasPrefix(trimmed, "{") {
			start = i
		}
		if strings.HasSuffix(trimmed, "}") {
			end = i
		}
	}
	if start >= 0 && end >= start {
		return strings.Join(lines[start:end+1], "\n")
	}
	return s
}

// GenerateContent runs the model for one site and validates the
// creative text. Keyword filtering happens later, against the banned
// list of the moment.
func GenerateContent(ctx context.Context, gen ContentGenerator, site model.Site) (model.AdContent, error) {
	raw, err := gen.GenerateCampaignJSON(ctx, BuildPrompt(site))
	if err != nil {
		return model.AdContent{}, err
	}
	content, err := ParseContent(raw)
	if err != nil {
		return model.AdContent{}, err
	}
	content.Headlines = ValidateHeadlines(content.Headlines)
	content.Descriptions = ValidateDescriptions(content.Descriptions)
	logContentStats(site, content)
	return content, nil
}

// ApplyDefaults tops up thin content so the CSV always imports: extra
// keywords below five, stock headlines below three, stock descriptions
// below two.
func ApplyDefaults(content model.AdContent, businessName string) model.AdContent {
	if len(content.Keywords) < minKeywords {
		content.Keywords = append(content.Keywords,
			businessName+" membership",
			"fitness classes DC",
			"gym membership DC",
			"personal training near me",
			"workout classes DC",
		)
		content.Keywords = dedupe(content.Keywords)
		if len(content.Keywords) > MaxKeywords {
			content.Keywords = content.Keywords[:MaxKeywords]
		}
	}

	if len(content.Headlines) < 3 {
		short := businessName
		if len([]rune(short)) > MaxHeadlineLen {
			short = string([]rune(short)[:27]) + "..."
		}
		content.Headlines = []string{
			"Join " + short + " Today",
			"Start Your Fitness Journey",
			"Transform Your Body Now",
		}
	}

	if len(content.Descriptions) < MaxDescriptions {
		content.Descriptions = []string{
			"Join " + businessName + ". Expert trainers & flexible memberships. Start today!",
			"Transform your fitness with our community. Personal & group training available.",
		}
	}

	return content
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// logContentStats is a debugging aid for the generation flow.
func logContentStats(site model.Site, content model.AdContent) {
	output.Debug("content generated",
		"site", site.URL,
		"keywords", len(content.Keywords),
		"headlines", len(content.Headlines),
		"descriptions", len(content.Descriptions))
}
