package cli

import (
	"fmt"
	"os"

	"github.com/mgpai22/tala/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfg.Path()); err == nil && !force {
			return fmt.Errorf("config file %s exists: use --force to overwrite", cfg.Path())
		}
		if err := config.Default().Save(cfg.Path()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfg.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
