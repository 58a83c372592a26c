package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"twharvest/pkg/auth"
	"twharvest/pkg/config"
	"twharvest/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twharvest configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TWHARVEST_*), including ./.env and ~/.twharvest.env
  - Configuration file
  - Default values (lowest priority)`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write every option with its default value to twharvest.yaml, or to the
path given with --config.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from all sources and check it.

Besides value ranges this checks that the credentials file exists and that
the output directory can be created.`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = "twharvest.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", path)
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Configuration written to %s", path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, commandFlags())
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	if key := os.Getenv("TWHARVEST_CONSUMER_KEY"); key != "" {
		fmt.Println()
		ui.PrintInfo("TWHARVEST_CONSUMER_KEY", auth.Mask(key))
	}
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, commandFlags())
	if err != nil {
		return err
	}

	var warnings []string
	if cfg.Twitter.Credentials.Source == "file" {
		if _, err := os.Stat(cfg.Twitter.Credentials.File); err != nil {
			warnings = append(warnings, fmt.Sprintf("credentials file %s is not readable", cfg.Twitter.Credentials.File))
		}
	}
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		warnings = append(warnings, fmt.Sprintf("output directory %s cannot be created", cfg.Output.BaseDirectory))
	}
	if cfg.Fetch.SafetyMargin == 0 {
		warnings = append(warnings, "safety margin is 0; sleeps may end just before the window resets")
	}

	for _, w := range warnings {
		ui.PrintWarning(w)
	}
	ui.PrintSuccess("Configuration is valid")
	return nil
}
