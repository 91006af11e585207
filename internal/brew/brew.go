// Package brew wraps the Homebrew package manager.
package brew

import (
	"context"
	"log/slog"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
)

// Client invokes brew through an execx.Runner.
type Client struct {
	runner execx.Runner
	logger *slog.Logger
}

// NewClient creates a brew client.
func NewClient(runner execx.Runner, logger *slog.Logger) *Client {
	return &Client{runner: runner, logger: logger}
}

// Available reports whether the brew binary is on PATH.
func Available() bool {
	return execx.LookPath("brew")
}

// Install installs the given formulas. Already-installed formulas are a
// no-op for brew, so the call is idempotent. The first brew failure aborts.
func (c *Client) Install(ctx context.Context, formulas ...string) error {
	if len(formulas) == 0 {
		return nil
	}

	c.logger.Info("installing system dependencies", "formulas", formulas)

	args := append([]string{"install"}, formulas...)
	if err := c.runner.Run(ctx, execx.Cmd{Name: "brew", Args: args}); err != nil {
		return errors.Wrap(err, "brew install")
	}
	return nil
}

// Prefix returns the installation prefix of a formula, e.g.
// /opt/homebrew/opt/python@3.10. Keg-only formulas are not linked into
// PATH, so callers locate their binaries under <prefix>/bin.
func (c *Client) Prefix(ctx context.Context, formula string) (string, error) {
	out, err := c.runner.Output(ctx, execx.Cmd{Name: "brew", Args: []string{"--prefix", formula}})
	if err != nil {
		return "", errors.Wrapf(err, "resolving prefix for %s", formula)
	}
	if out == "" {
		return "", errors.Newf("brew --prefix %s returned nothing", formula)
	}
	return out, nil
}
