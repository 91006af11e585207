package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modelsCmd)
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Download pretrained models",
	Long: `Download the configured pretrained model files into the installation's
models directory. Files already present are skipped, so the command is
safe to re-run after an interrupted download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd)
		if err != nil {
			return err
		}
		return p.FetchModels(cmd.Context())
	},
}
