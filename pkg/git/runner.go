// Package git wraps the git command line for the branch operations the pull
// request workflows need.
package git

import (
	"bytes"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/cockroachdb/errors"

	tugerrors "thoreinstein.com/tug/pkg/errors"
)

// CommandRunner runs external commands. It exists so tests can replace git.
type CommandRunner interface {
	// Run executes the command in dir and discards its output.
	Run(dir string, name string, args ...string) error

	// Output executes the command in dir and returns its stdout.
	Output(dir string, name string, args ...string) ([]byte, error)
}

// RealCommandRunner runs commands with os/exec. A failed command returns a
// *errors.CommandError carrying the exit code and the captured output.
type RealCommandRunner struct {
	Verbose bool
	Logger  *slog.Logger
}

// Run implements CommandRunner.
func (r *RealCommandRunner) Run(dir string, name string, args ...string) error {
	_, err := r.Output(dir, name, args...)
	return err
}

// Output implements CommandRunner.
func (r *RealCommandRunner) Output(dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Verbose && r.Logger != nil {
		r.Logger.Debug("running command", "cmd", name, "args", args, "dir", dir)
	}

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}

	output := append(Lines(stdout.String()), Lines(stderr.String())...)
	return stdout.Bytes(), tugerrors.NewCommandError(name+" "+strings.Join(args, " "), code, output, err)
}

// Lines splits command output into lines. Progress text before a carriage
// return is dropped, as are empty lines.
func Lines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if i := strings.LastIndex(line, "\r"); i >= 0 {
			line = line[i+1:]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
