package dist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/progriv/progriv/internal/bundle"
	"github.com/progriv/progriv/internal/model"
	"github.com/progriv/progriv/internal/output"
)

// Cache subdirectories inside the isolated build environment.
const (
	modCacheDirName = "modcache"
	goCacheDirName  = "gocache"
)

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

const (
	// StepOK means the step completed.
	StepOK StepStatus = "ok"

	// StepFailed means the step failed and aborted the pipeline.
	StepFailed StepStatus = "failed"

	// StepSkipped means the step did not run, either by flag or
	// because a best-effort action could not be carried out.
	StepSkipped StepStatus = "skipped"
)

// StepResult records one pipeline step for the run report.
type StepResult struct {
	// Name identifies the step: toolchain, environment, dependencies,
	// clean, bundle, open.
	Name string `json:"name"`

	// Status is the step outcome.
	Status StepStatus `json:"status"`

	// Detail carries a short human-readable note, e.g. the toolchain
	// version or the reuse notice.
	Detail string `json:"detail,omitempty"`

	// Duration is how long the step took.
	Duration time.Duration `json:"durationNs"`
}

// Report is the machine-readable outcome of a pipeline run, printed as
// JSON when the --json flag is set.
type Report struct {
	// Success is true when every checkpoint passed.
	Success bool `json:"success"`

	// Steps lists the executed steps in order.
	Steps []StepResult `json:"steps"`

	// ExePath is the produced executable, set on success.
	ExePath string `json:"exePath,omitempty"`

	// PayloadFiles lists the archive paths shipped in the payload.
	PayloadFiles []string `json:"payloadFiles,omitempty"`

	// EnvReused is true when the isolated environment already existed
	// and creation was skipped.
	EnvReused bool `json:"envReused"`
}

// Pipeline executes the sequential distribution build. Construct it
// with NewPipeline and call Run once; a Pipeline is not reusable.
type Pipeline struct {
	// BaseDir is the module root the build runs against.
	BaseDir string

	// Descriptor is the loaded and validated bundling descriptor.
	Descriptor *bundle.Descriptor

	// Runner executes external processes.
	Runner Runner

	// SkipOpen disables the final open-output-directory step.
	SkipOpen bool

	// Now returns the current time; swapped in tests.
	Now func() time.Time

	manifest *bundle.Manifest
}

// NewPipeline creates a pipeline for the given module root and
// descriptor, using the production process runner.
func NewPipeline(baseDir string, d *bundle.Descriptor) *Pipeline {
	return &Pipeline{
		BaseDir:    baseDir,
		Descriptor: d,
		Runner:     NewExecRunner(),
	}
}

// Run executes the six pipeline steps strictly in order, fail-fast.
// The returned report always describes the steps that ran, including
// the failed one; the returned error is a CLIError carrying the
// checkpoint's exit code.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	// Step 1: Verify the Go toolchain is discoverable on PATH. Nothing
	// else can work without it, so this is the first checkpoint.
	output.Info("Checking Go toolchain")
	if err := p.step(report, "toolchain", p.checkToolchain(ctx)); err != nil {
		return report, model.WrapCLIError(
			model.ExitToolchainMissing,
			"Go toolchain not found. Install Go from https://go.dev/dl/ and make sure `go` is on PATH",
			err,
		)
	}

	// Step 2: Create the isolated build environment, or reuse the
	// existing one. Reuse skips creation entirely and just proceeds.
	output.Info("Preparing build environment", "dir", bundle.EnvDirName)
	if err := p.step(report, "environment", p.prepareEnvironment(report)); err != nil {
		return report, model.WrapCLIError(
			model.ExitEnvSetupFailed,
			"failed to create the isolated build environment",
			err,
		)
	}

	// Step 3: Load the dependency manifest and download modules into
	// the isolated cache. A missing go.mod fails here, not later.
	output.Info("Installing dependencies")
	if err := p.step(report, "dependencies", p.installDependencies(ctx)); err != nil {
		return report, model.WrapCLIError(
			model.ExitDepsInstallFailed,
			"dependency installation failed",
			err,
		)
	}

	// Step 4: Clear prior build artifacts. Proactive and final: there
	// is no rollback, the next run simply starts clean again.
	output.Info("Clearing previous build artifacts")
	if err := p.step(report, "clean", p.cleanArtifacts); err != nil {
		return report, model.WrapCLIError(
			model.ExitBundleFailed,
			"failed to clear previous build artifacts",
			err,
		)
	}

	// Step 5: Run the bundler. This is the long step: staging,
	// compiling and packing.
	output.Info("Bundling", "name", p.Descriptor.Name, "target", p.Descriptor.Target())
	if err := p.step(report, "bundle", p.runBundler(ctx, report)); err != nil {
		return report, model.WrapCLIError(
			model.ExitBundleFailed,
			"bundling failed",
			err,
		)
	}

	// Step 6: Open the output directory with the platform file
	// manager. Best effort: a failure here never fails the build.
	p.openOutput(ctx, report)

	report.Success = true
	return report, nil
}

// step times a single pipeline step and records its outcome in the
// report. The step function returns a short detail string for the
// report on success.
func (p *Pipeline) step(report *Report, name string, fn func() (string, error)) error {
	start := time.Now()
	detail, err := fn()
	result := StepResult{
		Name:     name,
		Status:   StepOK,
		Detail:   detail,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Status = StepFailed
		result.Detail = err.Error()
	}
	report.Steps = append(report.Steps, result)
	return err
}

// checkToolchain verifies `go` is on PATH and responds to `go version`.
func (p *Pipeline) checkToolchain(ctx context.Context) func() (string, error) {
	return func() (string, error) {
		if _, err := p.Runner.LookPath("go"); err != nil {
			return "", err
		}
		version, err := p.Runner.Run(ctx, p.BaseDir, nil, "go", "version")
		if err != nil {
			return "", err
		}
		version = strings.TrimSpace(version)
		output.Debug("toolchain", "version", version)
		return version, nil
	}
}

// prepareEnvironment creates the isolated environment directories, or
// notes reuse when the environment already exists.
func (p *Pipeline) prepareEnvironment(report *Report) func() (string, error) {
	return func() (string, error) {
		envDir := filepath.Join(p.BaseDir, bundle.EnvDirName)
		if _, err := os.Stat(envDir); err == nil {
			report.EnvReused = true
			output.Info("Reusing existing build environment", "dir", bundle.EnvDirName)
			return "reused existing environment", nil
		}

		for _, sub := range []string{modCacheDirName, goCacheDirName} {
			if err := os.MkdirAll(filepath.Join(envDir, sub), 0o755); err != nil {
				return "", err
			}
		}
		return "created " + bundle.EnvDirName, nil
	}
}

// installDependencies parses go.mod and downloads all modules into the
// isolated module cache.
func (p *Pipeline) installDependencies(ctx context.Context) func() (string, error) {
	return func() (string, error) {
		manifestPath := filepath.Join(p.BaseDir, bundle.ManifestFileName)
		m, err := bundle.LoadManifest(manifestPath)
		if err != nil {
			return "", err
		}
		p.manifest = m

		_, err = p.Runner.Run(ctx, p.BaseDir, p.cacheEnv(), "go", "mod", "download", "all")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d modules in manifest", len(m.Require())), nil
	}
}

// cleanArtifacts removes prior build output so stale files never leak
// into a fresh bundle.
func (p *Pipeline) cleanArtifacts() (string, error) {
	for _, dir := range []string{"build", "dist"} {
		if err := os.RemoveAll(filepath.Join(p.BaseDir, dir)); err != nil {
			return "", err
		}
	}
	return "removed build/ and dist/", nil
}

// runBundler executes the freezing step and copies its results into
// the report.
func (p *Pipeline) runBundler(ctx context.Context, report *Report) func() (string, error) {
	return func() (string, error) {
		b := &bundle.Bundler{
			BaseDir:    p.BaseDir,
			Descriptor: p.Descriptor,
			Manifest:   p.manifest,
			Runner:     p.Runner,
			ModCache:   filepath.Join(p.BaseDir, bundle.EnvDirName, modCacheDirName),
			GoCache:    filepath.Join(p.BaseDir, bundle.EnvDirName, goCacheDirName),
			Now:        p.Now,
		}

		result, err := b.Run(ctx)
		if err != nil {
			return "", err
		}

		for _, warning := range result.Warnings {
			output.Warn(warning)
		}
		if result.IconTool != "" {
			output.Debug("embedded icon resource", "tool", result.IconTool)
		}

		report.ExePath = result.ExePath
		report.PayloadFiles = result.PayloadFiles
		return filepath.Base(result.ExePath), nil
	}
}

// openOutput opens dist/ with the platform file manager. Never fatal.
func (p *Pipeline) openOutput(ctx context.Context, report *Report) {
	if p.SkipOpen {
		report.Steps = append(report.Steps, StepResult{
			Name:   "open",
			Status: StepSkipped,
			Detail: "disabled by flag",
		})
		return
	}

	distDir := filepath.Join(p.BaseDir, "dist")
	if err := OpenDir(ctx, p.Runner, distDir); err != nil {
		output.Warn("Could not open output directory", "err", err)
		report.Steps = append(report.Steps, StepResult{
			Name:   "open",
			Status: StepSkipped,
			Detail: "file manager launch failed",
		})
		return
	}

	report.Steps = append(report.Steps, StepResult{
		Name:   "open",
		Status: StepOK,
		Detail: distDir,
	})
}

// cacheEnv returns the environment variables pointing the toolchain at
// the isolated caches.
func (p *Pipeline) cacheEnv() []string {
	return []string{
		"GOMODCACHE=" + filepath.Join(p.BaseDir, bundle.EnvDirName, modCacheDirName),
		"GOCACHE=" + filepath.Join(p.BaseDir, bundle.EnvDirName, goCacheDirName),
	}
}
