// Package git provides Git operation wrappers for cloning and updating
// the application source repository.
package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
)

// Client runs git through an execx.Runner.
type Client struct {
	runner execx.Runner
}

// NewClient creates a git client.
func NewClient(runner execx.Runner) *Client {
	return &Client{runner: runner}
}

// Clone clones a repository branch into dest with the specified depth.
// Output is streamed so clone progress is visible; stdin stays connected
// to support interactive authentication.
func (c *Client) Clone(ctx context.Context, url, branch, dest string, depth int) error {
	args := []string{"clone", fmt.Sprintf("--depth=%d", depth)}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, url, dest)

	if err := c.runner.Run(ctx, execx.Cmd{Name: "git", Args: args}); err != nil {
		return errors.Wrap(err, "git clone failed")
	}
	return nil
}

// Pull performs a fast-forward-only pull in the specified repository directory.
func (c *Client) Pull(ctx context.Context, repoPath string) error {
	args := []string{"-C", repoPath, "pull", "--ff-only"}
	if err := c.runner.Run(ctx, execx.Cmd{Name: "git", Args: args}); err != nil {
		return errors.Wrap(err, "git pull failed")
	}
	return nil
}

// IsRepo reports whether repoPath contains a git checkout by verifying
// the existence of a .git directory.
func IsRepo(repoPath string) bool {
	info, err := os.Stat(filepath.Join(repoPath, ".git"))
	return err == nil && info.IsDir()
}
