package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/sentinel/internal/config"
)

var (
	flagConfigLocal bool
	flagConfigForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sentinel configuration",
}

// configTarget returns the file that init and set write to.
func configTarget() (string, error) {
	switch {
	case flagConfig != "":
		return flagConfig, nil
	case flagConfigLocal:
		return config.LocalFile, nil
	default:
		return config.ConfigPath()
	}
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return err
		}

		if err := config.Init(path, flagConfigForce); err != nil {
			if errors.Is(err, config.ErrExists) {
				fmt.Fprintf(os.Stderr, "Config file already exists at %s\n", path)
				return nil
			}
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Config file created at %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configTarget()
		if err != nil {
			return err
		}

		if err := config.SetField(path, args[0], args[1]); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(nil)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configInitCmd.Flags().BoolVar(&flagConfigLocal, "local", false, "Write ./"+config.LocalFile+" instead of the global file")
	configInitCmd.Flags().BoolVar(&flagConfigForce, "force", false, "Overwrite an existing file")
	configSetCmd.Flags().BoolVar(&flagConfigLocal, "local", false, "Write ./"+config.LocalFile+" instead of the global file")
}
