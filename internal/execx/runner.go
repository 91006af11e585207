// Package execx runs external commands for the installer.
//
// Every external tool the pipeline touches (brew, git, python, pip, curl,
// pyinstaller, the generated launcher) goes through the Runner interface so
// command execution can be faked in tests. The real implementation streams
// output and connects stdin for interactive authentication.
package execx

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rvctools/vcinstall/internal/errors"
)

// Cmd describes a single external command invocation.
type Cmd struct {
	// Name is the binary to run, resolved via PATH unless absolute.
	Name string

	// Args are the command arguments.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the current process environment.
	Env []string
}

// String renders the invocation for logging.
func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command, streaming output to the process's
	// stdout/stderr. It returns an error wrapping ErrCommandFailed when
	// the command exits non-zero.
	Run(ctx context.Context, c Cmd) error

	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, c Cmd) (string, error)
}

// System is the real Runner backed by os/exec.
// Stdout and Stderr default to the process's own streams; Stdin is connected
// to os.Stdin so commands like git can prompt for credentials.
type System struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// NewSystem creates a System runner using the process's standard streams.
func NewSystem() *System {
	return &System{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
	}
}

var _ Runner = (*System)(nil)

// Run implements Runner.
func (s *System) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr
	cmd.Stdin = s.Stdin
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(errors.ErrCommandFailed, "%s: %v", c.String(), err)
	}
	return nil
}

// Output implements Runner.
func (s *System) Output(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrapf(errors.ErrCommandFailed, "%s: %s", c.String(), msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath reports whether the named binary is resolvable via PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
