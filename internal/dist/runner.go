package dist

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/progriv/progriv/internal/output"
)

// Runner abstracts external process execution so the pipeline can be
// tested without a Go toolchain installed. The bundle package declares
// the same interface; ExecRunner satisfies both.
type Runner interface {
	// LookPath reports where an executable is found on PATH, with an
	// error when it is not.
	LookPath(file string) (string, error)

	// Run executes a command in dir with extra environment variables
	// layered over the parent environment, returning captured stdout.
	// Stderr is folded into the returned error on failure.
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner creates the production process runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// LookPath implements Runner via exec.LookPath.
func (r *ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes a command and captures its output.
//
// Stdout and stderr are captured separately so stdout can be returned
// on success while stderr feeds the error message on failure. Extra
// environment variables are appended after the parent environment, so
// they win for duplicate keys.
func (r *ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, error) {
	output.Debug("exec", "cmd", name+" "+strings.Join(args, " "), "dir", dir)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
