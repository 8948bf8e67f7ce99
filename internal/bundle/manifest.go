// manifest.go loads the module dependency manifest (go.mod) and checks
// it against the descriptor's hiddenImports and excludes declarations.
//
// The manifest is parsed with golang.org/x/mod/modfile rather than by
// hand: the go.mod grammar has enough corners (block vs single-line
// require, comments, retract/exclude directives) that a line scanner
// would misread real files.
package bundle

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// ManifestFileName is the dependency manifest the bundler checks
// hiddenImports and excludes against.
const ManifestFileName = "go.mod"

// Manifest is a parsed dependency manifest: the module's own path plus
// the set of required module paths (direct and indirect).
type Manifest struct {
	// ModulePath is the declared module path, e.g.
	// "github.com/progriv/progriv".
	ModulePath string

	require map[string]bool
}

// LoadManifest reads and parses a go.mod file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dependency manifest %s: %w", path, err)
	}

	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dependency manifest %s: %w", path, err)
	}
	if f.Module == nil || f.Module.Mod.Path == "" {
		return nil, fmt.Errorf("dependency manifest %s has no module directive", path)
	}

	m := &Manifest{
		ModulePath: f.Module.Mod.Path,
		require:    make(map[string]bool, len(f.Require)),
	}
	for _, r := range f.Require {
		m.require[r.Mod.Path] = true
	}
	return m, nil
}

// Has reports whether the manifest requires the given module path.
func (m *Manifest) Has(modulePath string) bool {
	return m.require[modulePath]
}

// Require returns all required module paths in sorted order.
func (m *Manifest) Require() []string {
	paths := make([]string, 0, len(m.require))
	for p := range m.require {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// CheckDependencies verifies the descriptor's manifest constraints:
// every hiddenImports module must be required by go.mod, and no
// excludes module may be. All violations are collected into a single
// error so the operator can fix the descriptor or manifest in one pass.
func CheckDependencies(d *Descriptor, m *Manifest) error {
	var problems []string

	for _, mod := range d.HiddenImports {
		if !m.Has(mod) {
			problems = append(problems, fmt.Sprintf("hidden import %s is not required by %s", mod, ManifestFileName))
		}
	}
	for _, mod := range d.Excludes {
		if m.Has(mod) {
			problems = append(problems, fmt.Sprintf("excluded module %s is required by %s", mod, ManifestFileName))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("dependency manifest check failed:\n  %s", strings.Join(problems, "\n  "))
}
