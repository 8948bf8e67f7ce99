package campaign

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progriv/progriv/internal/model"
)

// TestGeneratorRun tests the full happy path: content, filtering,
// CSV on disk, stats.
func TestGeneratorRun(t *testing.T) {
	stub := &stubGenerator{raw: `{
		"keywords": ["gym membership dc", "cheap gym deals", "personal training near me", "fitness classes dc", "crossfit dc", "yoga studio dc"],
		"headlines": ["Join Cool Gym Today", "Train With Experts", "Your Fitness Home"],
		"descriptions": ["Expert trainers and flexible plans for every level.", "Start your fitness journey with our community."]
	}`}

	out := t.TempDir()
	g := NewGenerator(stub, out)
	g.now = func() time.Time { return testTime }

	result, err := g.Run(context.Background(),
		model.Site{URL: "coolgym.ua", Name: "Cool Gym"},
		testConfig(),
		[]string{"cheap"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "ads_Cool_Gym_20260824_150405.csv"), result.FilePath)
	_, statErr := os.Stat(result.FilePath)
	assert.NoError(t, statErr, "CSV must exist on disk")

	require.Len(t, result.RemovedKeywords, 1)
	assert.Equal(t, model.KindKeyword, result.RemovedKeywords[0].Kind)
	assert.Equal(t, "cheap gym deals", result.RemovedKeywords[0].Value)
	assert.Equal(t, "Generic", result.RemovedKeywords[0].Reason)

	assert.Equal(t, 5, result.Stats.Keywords)
	assert.Equal(t, 1, result.Stats.Removed)
	assert.Equal(t, "Cool Gym - Search Campaign", result.Stats.Campaign)
	assert.Equal(t, "2026-08-24 → 2026-09-03", result.Stats.Dates)
}

// TestGeneratorRunBannedDomain tests the domain gate.
func TestGeneratorRunBannedDomain(t *testing.T) {
	stub := &stubGenerator{raw: validContentJSON}
	g := NewGenerator(stub, t.TempDir())

	_, err := g.Run(context.Background(),
		model.Site{URL: "https://spamgym.com"},
		testConfig(),
		nil,
		[]string{"spamgym.com"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBannedDomain)
	assert.Empty(t, stub.prompts, "banned domains must not reach the model")
}

// TestGeneratorRunModelFailure tests error propagation from the model.
func TestGeneratorRunModelFailure(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	g := NewGenerator(stub, t.TempDir())

	_, err := g.Run(context.Background(), model.Site{URL: "coolgym.ua"}, testConfig(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

// TestGeneratorRunThinContentGetsDefaults tests that heavy filtering
// still yields an importable file.
func TestGeneratorRunThinContentGetsDefaults(t *testing.T) {
	stub := &stubGenerator{raw: `{
		"keywords": ["cheap gym", "cheap fitness", "cheap training"],
		"headlines": ["Join Cool Gym Today"],
		"descriptions": ["Expert trainers and flexible plans for every level."]
	}`}

	g := NewGenerator(stub, t.TempDir())
	g.now = func() time.Time { return testTime }

	result, err := g.Run(context.Background(),
		model.Site{URL: "coolgym.ua", Name: "Cool Gym"},
		testConfig(),
		[]string{"cheap"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.Removed)
	assert.GreaterOrEqual(t, result.Stats.Keywords, minKeywords, "defaults top up filtered keywords")
	assert.Equal(t, 3, result.Stats.Headlines, "stock headlines replace a thin set")
	assert.Equal(t, 2, result.Stats.Descriptions)
}

// TestGeneratorRunCreatesOutputFolder tests that a missing output
// folder is created on demand.
func TestGeneratorRunCreatesOutputFolder(t *testing.T) {
	stub := &stubGenerator{raw: validContentJSON}
	out := filepath.Join(t.TempDir(), "nested", "output")
	g := NewGenerator(stub, out)

	result, err := g.Run(context.Background(), model.Site{URL: "coolgym.ua"}, testConfig(), nil, nil)
	require.NoError(t, err)
	assert.True(t, len(result.FilePath) > 0)
	_, statErr := os.Stat(result.FilePath)
	assert.NoError(t, statErr)
}
