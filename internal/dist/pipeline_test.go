package dist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progriv/progriv/internal/bundle"
	"github.com/progriv/progriv/internal/model"
)

// runCall records one fake runner invocation.
type runCall struct {
	dir  string
	env  []string
	name string
	args []string
}

// fakeRunner is a Runner for pipeline tests: tool availability is
// declarative and runFunc simulates tool behavior.
type fakeRunner struct {
	tools   map[string]bool
	runFunc func(call runCall) (string, error)
	calls   []runCall
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.tools[file] {
		return "/usr/bin/" + file, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

func (f *fakeRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	call := runCall{dir: dir, env: env, name: name, args: args}
	f.calls = append(f.calls, call)
	if f.runFunc != nil {
		return f.runFunc(call)
	}
	return "", nil
}

// goToolchain returns a runFunc emulating a healthy toolchain: `go
// version` answers, `go build` writes its -o target.
func goToolchain(t *testing.T) func(call runCall) (string, error) {
	return func(call runCall) (string, error) {
		if call.name != "go" || len(call.args) == 0 {
			return "", nil
		}
		switch call.args[0] {
		case "version":
			return "go version go1.25.0 linux/amd64\n", nil
		case "build":
			for i, arg := range call.args {
				if arg == "-o" && i+1 < len(call.args) {
					if err := os.WriteFile(call.args[i+1], []byte("MZ-compiled-image"), 0o755); err != nil {
						t.Fatalf("fake go build could not write output: %v", err)
					}
				}
			}
		}
		return "", nil
	}
}

// writeFile creates a file with parent directories.
func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// moduleFixture builds a bundleable module tree: manifest, entry
// package and assets.
func moduleFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), []byte(
		"module example.com/progriv\n\ngo 1.25.0\n\nrequire github.com/joho/godotenv v1.5.1\n"))
	writeFile(t, filepath.Join(dir, "cmd", "progriv", "main.go"), []byte("package main\n\nfunc main() {}\n"))
	writeFile(t, filepath.Join(dir, "assets", "icon.ico"), []byte("ico-bytes"))
	writeFile(t, filepath.Join(dir, "assets", "icon.png"), []byte("png-bytes"))
	writeFile(t, filepath.Join(dir, "assets", "theme", "colors.json"), []byte(`{"bg":"#2b2b2b"}`))
	return dir
}

// fixtureDescriptor matches moduleFixture.
func fixtureDescriptor() *bundle.Descriptor {
	return &bundle.Descriptor{
		Name:          "Progriv",
		Entry:         "./cmd/progriv",
		Icon:          bundle.IconSpec{Ico: "assets/icon.ico", Png: "assets/icon.png"},
		Datas:         []bundle.DataSpec{{Source: "assets/theme", Target: "assets/theme"}},
		HiddenImports: []string{"github.com/joho/godotenv"},
		Onefile:       true,
		Windowed:      true,
		GOOS:          "windows",
		GOARCH:        "amd64",
	}
}

// newTestPipeline wires a pipeline over the fixture with a fake runner.
// The open step is disabled; it has its own tests.
func newTestPipeline(dir string, runner Runner) *Pipeline {
	p := NewPipeline(dir, fixtureDescriptor())
	p.Runner = runner
	p.SkipOpen = true
	return p
}

// stepNames extracts the recorded step names in order.
func stepNames(report *Report) []string {
	names := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		names = append(names, s.Name)
	}
	return names
}

// exitCode unwraps the CLIError code from a pipeline error.
func exitCode(t *testing.T, err error) model.ExitCode {
	t.Helper()
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr), "pipeline errors must carry an exit code, got %v", err)
	return cliErr.Code
}

// TestPipelineRun_Success verifies the clean-run property: all steps
// pass and dist/ holds exactly one executable.
func TestPipelineRun_Success(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{tools: map[string]bool{"go": true}, runFunc: goToolchain(t)}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, []string{"toolchain", "environment", "dependencies", "clean", "bundle", "open"},
		stepNames(report))
	assert.False(t, report.EnvReused)
	assert.Equal(t, filepath.Join(dir, "dist", "Progriv.exe"), report.ExePath)

	entries, err := os.ReadDir(filepath.Join(dir, "dist"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "a successful run produces exactly one file in dist/")
	assert.Equal(t, "Progriv.exe", entries[0].Name())

	// The isolated environment exists with both caches.
	assert.DirExists(t, filepath.Join(dir, bundle.EnvDirName, "modcache"))
	assert.DirExists(t, filepath.Join(dir, bundle.EnvDirName, "gocache"))

	// Dependency download ran against the isolated module cache.
	var sawDownload bool
	for _, call := range runner.calls {
		if call.name == "go" && len(call.args) > 2 && call.args[0] == "mod" && call.args[1] == "download" {
			sawDownload = true
			assert.Contains(t, call.env, "GOMODCACHE="+filepath.Join(dir, bundle.EnvDirName, "modcache"))
		}
	}
	assert.True(t, sawDownload, "go mod download must run")
}

// TestPipelineRun_PayloadByteIdentical verifies that the packed payload
// carries the icon assets and theme data byte-identical to the sources.
func TestPipelineRun_PayloadByteIdentical(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{tools: map[string]bool{"go": true}, runFunc: goToolchain(t)}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.NoError(t, err)

	p, err := bundle.OpenPayload(report.ExePath)
	require.NoError(t, err)
	defer p.Close()

	for _, name := range []string{"assets/icon.ico", "assets/icon.png", "assets/theme/colors.json"} {
		want, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		require.NoError(t, err)
		got, err := p.ReadFile(name)
		require.NoError(t, err, "payload must contain %s", name)
		assert.Equal(t, want, got, "%s must be byte-identical to its source", name)
	}
}

// TestPipelineRun_ToolchainMissing verifies the first checkpoint: no
// toolchain means exit code 2 and no later step runs.
func TestPipelineRun_ToolchainMissing(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.ExitToolchainMissing, exitCode(t, err))

	assert.False(t, report.Success)
	assert.Equal(t, []string{"toolchain"}, stepNames(report), "no step after the failed checkpoint may run")
	assert.Equal(t, StepFailed, report.Steps[0].Status)
	assert.Empty(t, runner.calls)
	assert.NoDirExists(t, filepath.Join(dir, "dist"))
}

// TestPipelineRun_ManifestMissing verifies the dependency checkpoint:
// a missing go.mod terminates with exit code 4 and no executable.
func TestPipelineRun_ManifestMissing(t *testing.T) {
	dir := moduleFixture(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "go.mod")))
	runner := &fakeRunner{tools: map[string]bool{"go": true}, runFunc: goToolchain(t)}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.ExitDepsInstallFailed, exitCode(t, err))

	assert.Equal(t, []string{"toolchain", "environment", "dependencies"}, stepNames(report))
	assert.NoFileExists(t, filepath.Join(dir, "dist", "Progriv.exe"))

	// Only `go version` ran; the download was never attempted without
	// a manifest.
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "version", runner.calls[0].args[0])
}

// TestPipelineRun_DepsDownloadFails verifies exit code 4 when the
// module download itself fails.
func TestPipelineRun_DepsDownloadFails(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{
		tools: map[string]bool{"go": true},
		runFunc: func(call runCall) (string, error) {
			if call.name == "go" && call.args[0] == "mod" {
				return "", fmt.Errorf("go mod download failed: dial tcp: lookup proxy.golang.org: no such host")
			}
			if call.args[0] == "version" {
				return "go version go1.25.0 linux/amd64\n", nil
			}
			return "", nil
		},
	}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.ExitDepsInstallFailed, exitCode(t, err))
	assert.Equal(t, StepFailed, report.Steps[len(report.Steps)-1].Status)
	assert.NoFileExists(t, filepath.Join(dir, "dist", "Progriv.exe"))
}

// TestPipelineRun_BundleFails verifies the last checkpoint: a compile
// failure exits with code 5 and leaves no executable behind.
func TestPipelineRun_BundleFails(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{
		tools: map[string]bool{"go": true},
		runFunc: func(call runCall) (string, error) {
			if call.name == "go" && call.args[0] == "build" {
				return "", fmt.Errorf("go build failed: syntax error")
			}
			return "", nil
		},
	}

	report, err := newTestPipeline(dir, runner).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.ExitBundleFailed, exitCode(t, err))

	assert.Equal(t, []string{"toolchain", "environment", "dependencies", "clean", "bundle"},
		stepNames(report), "the open step must not run after a failed bundle")
	assert.NoFileExists(t, filepath.Join(dir, "dist", "Progriv.exe"))
}

// TestPipelineRun_ReusesExistingEnvironment verifies that a second run
// skips environment creation and reports the reuse.
func TestPipelineRun_ReusesExistingEnvironment(t *testing.T) {
	dir := moduleFixture(t)
	runner := &fakeRunner{tools: map[string]bool{"go": true}, runFunc: goToolchain(t)}

	first, err := newTestPipeline(dir, runner).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, first.EnvReused)

	second, err := newTestPipeline(dir, runner).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.EnvReused)
	assert.True(t, second.Success, "reuse must proceed to dependency installation, not fail")

	for _, s := range second.Steps {
		if s.Name == "environment" {
			assert.Equal(t, StepOK, s.Status)
			assert.Equal(t, "reused existing environment", s.Detail)
		}
	}
}

// TestPipelineRun_CleansStaleArtifacts verifies that prior build output
// never leaks into a fresh bundle.
func TestPipelineRun_CleansStaleArtifacts(t *testing.T) {
	dir := moduleFixture(t)
	writeFile(t, filepath.Join(dir, "dist", "stale.exe"), []byte("stale"))
	writeFile(t, filepath.Join(dir, "build", "junk.txt"), []byte("junk"))
	runner := &fakeRunner{tools: map[string]bool{"go": true}, runFunc: goToolchain(t)}

	_, err := newTestPipeline(dir, runner).Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "dist"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Progriv.exe", entries[0].Name())
}

// TestPipelineRun_OpenStep verifies the best-effort open step: it runs
// when an opener is available and is recorded as skipped when not, in
// both cases without failing the build.
func TestPipelineRun_OpenStep(t *testing.T) {
	openers := map[string]bool{"explorer": true, "open": true, "xdg-open": true}

	tests := []struct {
		name       string
		skipOpen   bool
		tools      map[string]bool
		wantStatus StepStatus
	}{
		{
			name:       "opener available",
			tools:      map[string]bool{"go": true, "explorer": true, "open": true, "xdg-open": true},
			wantStatus: StepOK,
		},
		{
			name:       "no opener installed",
			tools:      map[string]bool{"go": true},
			wantStatus: StepSkipped,
		},
		{
			name:       "disabled by flag",
			skipOpen:   true,
			tools:      map[string]bool{"go": true, "explorer": true, "open": true, "xdg-open": true},
			wantStatus: StepSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := moduleFixture(t)
			runner := &fakeRunner{tools: tt.tools, runFunc: goToolchain(t)}
			p := newTestPipeline(dir, runner)
			p.SkipOpen = tt.skipOpen

			report, err := p.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, report.Success)

			last := report.Steps[len(report.Steps)-1]
			require.Equal(t, "open", last.Name)
			assert.Equal(t, tt.wantStatus, last.Status)

			if tt.wantStatus == StepOK {
				var openerRan bool
				for _, call := range runner.calls {
					if openers[call.name] {
						openerRan = true
					}
				}
				assert.True(t, openerRan, "an opener process must have been launched")
			}
		})
	}
}

// TestWaitForEnter verifies the pause prompt and that a line of input
// releases it.
func TestWaitForEnter(t *testing.T) {
	var out bytes.Buffer
	WaitForEnter(&out, strings.NewReader("\n"))
	assert.Contains(t, out.String(), "Press Enter to exit")
}
