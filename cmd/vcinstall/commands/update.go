package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the checkout and dependencies in place",
	Long: `Pull the latest application source with a fast-forward-only merge and
re-sync the Python environment. User data directories are never touched
by this command; use install for a clean reinstall.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		return p.Update(cmd.Context())
	},
}
