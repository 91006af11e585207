package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rvctools/vcinstall/internal/cli/prompt"
	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/install"
	"github.com/rvctools/vcinstall/internal/logging"
)

// commandLogger returns the logger attached to the command's context by
// setupLogging.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	if ctx := cmd.Context(); ctx != nil {
		return logging.FromContext(ctx)
	}
	return slog.Default()
}

// newPipeline assembles the installation pipeline from the loaded config.
func newPipeline(cmd *cobra.Command) (*install.Pipeline, error) {
	if cfg == nil {
		return nil, errors.NewUserError(errors.New("configuration not loaded"), "")
	}
	return install.New(cfg, execx.NewSystem(), commandLogger(cmd), prompt.New()), nil
}
