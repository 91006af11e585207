package commands

import (
	"github.com/spf13/cobra"

	"github.com/rvctools/vcinstall/internal/bundle"
	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/git"
)

func init() {
	rootCmd.AddCommand(packageCmd)
}

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Build the distributable Applio.app bundle",
	Long: `Package the installation into a native macOS app bundle with
PyInstaller: previous build output is removed, the bundle is built for
arm64 with the full torch and gradio data trees collected, and the
produced Info.plist is patched with the microphone usage description and
version metadata.

PyInstaller must be available in the installation's virtual environment
(pip install pyinstaller).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return errors.NewUserError(errors.New("configuration not loaded"), "")
		}
		if !git.IsRepo(cfg.InstallDir) {
			return errors.NewUserError(
				errors.Newf("no installation found at %s", cfg.InstallDir),
				"run: vcinstall install",
			)
		}

		b := bundle.NewBuilder(execx.NewSystem(), commandLogger(cmd), cfg.InstallDir)
		appPath, err := b.Build(cmd.Context())
		if err != nil {
			return errors.NewSystemError(err, "install PyInstaller into the venv: .venv/bin/pip install pyinstaller")
		}

		cmd.Printf("Application bundle ready at %s\n", appPath)
		return nil
	},
}
