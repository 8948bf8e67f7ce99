// Package cli — dist_test.go covers the progriv-dist command wiring:
// flag registration and defaults. Pipeline behavior itself is tested in
// internal/dist.
package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progriv/progriv/internal/bundle"
)

// TestNewDistRootCommandFlags verifies the bundler's flag surface and
// defaults, in particular that a bare invocation targets the descriptor
// in the current directory.
func TestNewDistRootCommandFlags(t *testing.T) {
	cmd := NewDistRootCommand()

	config := cmd.Flags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, bundle.DescriptorFileName, config.DefValue)

	for _, name := range []string{"no-pause", "skip-open"} {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "false", f.DefValue, name)
	}

	for _, name := range []string{"json", "verbose"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "false", f.DefValue, name)
	}

	assert.Empty(t, cmd.Commands(), "the bundler has no subcommands")
}
