package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rvctools/vcinstall/internal/config"
	"github.com/rvctools/vcinstall/internal/errors"
)

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false,
		"overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vcinstall configuration",
	Long: `Manage the vcinstall configuration file.

Without a config file, every setting falls back to a built-in default.
Use "config init" to write the effective configuration to disk as a
starting point for customization.`,
	Example: `  # Write the effective configuration to the default location
  vcinstall config init

  # Write to a custom location
  vcinstall --config ./vcinstall.yaml config init`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to disk",
	Long: `Write the effective configuration, defaults merged with any loaded
config file, as YAML. The target is the --config path when given,
otherwise the default config location.`,
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	// A missing --config file is the init use case, not an error.
	c := cfg
	if c == nil {
		c = config.Defaults()
	}

	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return errors.NewUserError(
			errors.Newf("config file already exists at %s", path),
			"pass --force to overwrite",
		)
	}

	if err := config.Save(path, c); err != nil {
		return errors.NewSystemError(err, "")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
