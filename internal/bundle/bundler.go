package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Runner executes external tools for the bundler: the Go toolchain and
// the icon resource embedders. The production implementation lives in
// the pipeline package and wraps os/exec; tests substitute fakes so the
// bundling logic is exercised without any tool installed.
type Runner interface {
	// LookPath reports where an executable is found on PATH, with an
	// error when it is not.
	LookPath(file string) (string, error)

	// Run executes a command in dir with extra environment variables
	// layered over the parent environment, returning captured stdout.
	// Stderr is folded into the returned error on failure.
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)
}

// Bundler performs the freezing step: staging, compiling and packing
// one module into a shippable executable per its descriptor.
//
// All fields must be set by the caller; the pipeline wires them from
// its own configuration.
type Bundler struct {
	// BaseDir is the module root being bundled.
	BaseDir string

	// Descriptor is the parsed and validated bundling descriptor.
	Descriptor *Descriptor

	// Manifest is the parsed dependency manifest checked against the
	// descriptor's hiddenImports and excludes.
	Manifest *Manifest

	// Runner executes the toolchain and icon embedders.
	Runner Runner

	// ModCache and GoCache are the isolated cache directories the
	// compile step points GOMODCACHE and GOCACHE at. Empty values
	// leave the toolchain defaults in place.
	ModCache string
	GoCache  string

	// Now returns the current time; swapped in tests for a stable
	// staging manifest.
	Now func() time.Time
}

// Result describes a completed bundling run.
type Result struct {
	// ExePath is the produced executable under dist/.
	ExePath string `json:"exePath"`

	// PayloadPath is the standalone payload archive, set only when the
	// descriptor disables onefile packing.
	PayloadPath string `json:"payloadPath,omitempty"`

	// PayloadFiles lists the archive paths packed into the payload.
	PayloadFiles []string `json:"payloadFiles"`

	// IconTool is the resource embedder used ("rsrc" or "windres"),
	// empty when none ran.
	IconTool string `json:"iconTool,omitempty"`

	// Warnings collects non-fatal problems, e.g. a missing icon tool.
	Warnings []string `json:"warnings,omitempty"`
}

// Run executes the freezing step. On any error the produced executable
// is removed, so a failed run never leaves a partial artifact in dist/.
func (b *Bundler) Run(ctx context.Context) (result *Result, err error) {
	d := b.Descriptor
	result = &Result{}

	// Step 1: Check the dependency manifest against the descriptor's
	// hiddenImports and excludes before doing any work.
	if err := CheckDependencies(d, b.Manifest); err != nil {
		return nil, err
	}

	// Step 2: Stage the module source. The staged copy is what gets
	// compiled, so generated files never dirty the working tree.
	stageDir := filepath.Join(b.BaseDir, "build", d.Name, "src")
	if err := Stage(b.BaseDir, stageDir); err != nil {
		return nil, fmt.Errorf("failed to stage module source: %w", err)
	}

	stagedEntryDir := filepath.Join(stageDir, filepath.FromSlash(d.Entry))

	// Step 3: Generate underscore imports for the hiddenImports
	// modules so the compiler links them despite no direct reference.
	if _, err := WriteHiddenImportsFile(stagedEntryDir, d.HiddenImports); err != nil {
		return nil, err
	}

	// Step 4: Embed the Windows icon resource. A missing embedder is a
	// warning only; the icon assets still ship inside the payload.
	if d.GOOS == "windows" {
		icoPath := filepath.Join(b.BaseDir, filepath.FromSlash(d.Icon.Ico))
		tool, err := EmbedIcon(ctx, b.Runner, stagedEntryDir, icoPath)
		switch {
		case errors.Is(err, ErrNoIconTool):
			result.Warnings = append(result.Warnings, err.Error())
		case err != nil:
			return nil, err
		default:
			result.IconTool = tool
		}
	}

	// Step 5: Compile the staged entry package into dist/.
	distDir := filepath.Join(b.BaseDir, "dist")
	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create dist directory: %w", err)
	}
	exePath := filepath.Join(distDir, d.OutputName())

	if err := b.compile(ctx, stageDir, exePath); err != nil {
		return nil, err
	}
	result.ExePath = exePath

	// A compiled binary exists from here on. Remove it on any later
	// failure so dist/ never holds a half-packed executable.
	defer func() {
		if err != nil {
			os.Remove(exePath)
			result = nil
		}
	}()

	// Step 6: Build the payload archive from the original sources and
	// attach it, either appended to the executable or as a sibling
	// archive.
	archive, packed, err := BuildPayloadArchive(b.BaseDir, d)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload archive: %w", err)
	}

	if d.Onefile {
		if err := AppendPayload(exePath, archive); err != nil {
			return nil, err
		}
	} else {
		result.PayloadPath = filepath.Join(distDir, d.Name+".payload.zip")
		if err := os.WriteFile(result.PayloadPath, archive, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write payload archive: %w", err)
		}
	}

	for _, entry := range packed {
		result.PayloadFiles = append(result.PayloadFiles, entry.Path)
	}

	// Step 7: Write the staging manifest describing the shipped files.
	exeEntry, err := DigestFile(exePath, d.OutputName())
	if err != nil {
		return nil, fmt.Errorf("failed to digest executable: %w", err)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	manifest := &StagingManifest{
		Name:    d.Name,
		Target:  d.Target(),
		BuiltAt: now().UTC(),
		Files:   append(packed, exeEntry),
	}
	manifestPath := filepath.Join(b.BaseDir, "build", d.Name, StagingManifestFileName)
	if err := WriteStagingManifest(manifestPath, manifest); err != nil {
		return nil, err
	}

	return result, nil
}

// compile invokes `go build` on the staged source with the descriptor's
// target platform and the isolated caches.
func (b *Bundler) compile(ctx context.Context, stageDir, exePath string) error {
	d := b.Descriptor

	ldflags := "-s -w"
	if d.Windowed {
		ldflags += " -H=windowsgui"
	}

	env := []string{
		"GOOS=" + d.GOOS,
		"GOARCH=" + d.GOARCH,
		"CGO_ENABLED=0",
	}
	if b.ModCache != "" {
		env = append(env, "GOMODCACHE="+b.ModCache)
	}
	if b.GoCache != "" {
		env = append(env, "GOCACHE="+b.GoCache)
	}

	_, err := b.Runner.Run(ctx, stageDir, env,
		"go", "build", "-trimpath", "-ldflags", ldflags, "-o", exePath, d.Entry)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	// go build reports success without producing output only when the
	// target is not a main package; surface that as a bundling error.
	if _, statErr := os.Stat(exePath); statErr != nil {
		return fmt.Errorf("compilation produced no executable at %s (is %s a main package?)", exePath, d.Entry)
	}
	return nil
}
