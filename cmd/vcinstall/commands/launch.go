package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start the installed application",
	Long: `Regenerate the launcher script and run it. The script activates the
virtual environment, exports the macOS launch environment (MPS fallback,
thread limits, fork-safety override), and starts the web UI on the
configured address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		return p.Launch(cmd.Context())
	},
}
