package execx

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scriptable Runner for tests. It records every invocation and
// returns canned results keyed by a prefix of the rendered command line.
type Fake struct {
	mu sync.Mutex

	// Calls records each executed command in order.
	Calls []Cmd

	// Errors maps a command-line prefix to the error Run/Output returns.
	Errors map[string]error

	// Outputs maps a command-line prefix to the stdout Output returns.
	Outputs map[string]string

	// Hooks maps a command-line prefix to a function run on match, for
	// simulating side effects like a clone creating files.
	Hooks map[string]func(Cmd) error
}

// NewFake creates an empty Fake runner.
func NewFake() *Fake {
	return &Fake{
		Errors:  make(map[string]error),
		Outputs: make(map[string]string),
		Hooks:   make(map[string]func(Cmd) error),
	}
}

var _ Runner = (*Fake)(nil)

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, c Cmd) error {
	f.record(c)
	return f.lookupErr(c)
}

// Output implements Runner.
func (f *Fake) Output(ctx context.Context, c Cmd) (string, error) {
	f.record(c)
	if err := f.lookupErr(c); err != nil {
		return "", err
	}
	line := c.String()
	for prefix, out := range f.Outputs {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return "", nil
}

// CommandLines returns the recorded invocations as rendered command lines.
func (f *Fake) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.String()
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, line := range f.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (f *Fake) record(c Cmd) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, c)
}

func (f *Fake) lookupErr(c Cmd) error {
	line := c.String()
	for prefix, err := range f.Errors {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	for prefix, hook := range f.Hooks {
		if strings.HasPrefix(line, prefix) {
			return hook(c)
		}
	}
	return nil
}
