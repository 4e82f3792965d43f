package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/sklang/internal/config"
)

// initCmd: sklang init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath
		}
		if err := config.Write(path, config.Default()); err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}
