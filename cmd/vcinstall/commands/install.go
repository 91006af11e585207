package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the full installation pipeline",
	Long: `Install Applio end to end: preflight checks, Homebrew dependencies,
source checkout, Python virtual environment with pinned packages,
pretrained model downloads, and the launcher script.

If an installation already exists you are offered the choice between an
in-place update and a clean reinstall. A clean reinstall preserves user
data: datasets, logs, and the application config move to the fresh
checkout, and trained weights are merged without overwriting.`,
	Example: `  vcinstall install
  vcinstall install --install-dir ~/voice/Applio`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		return p.Install(cmd.Context())
	},
}
