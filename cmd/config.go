package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/iconward/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect iconward configuration",
	Long: `Inspect the resolved configuration.

Examples:
  iconward config show                 # Resolved configuration as YAML
  iconward config show --format json
  iconward config validate             # Report errors and warnings
  iconward config validate --strict    # Treat warnings as errors`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after loading the config file, applying
environment variable overrides and filling in defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configShowFlags *OutputFlags
	configStrict    bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	configShowFlags = &OutputFlags{}
	configShowCmd.Flags().StringVarP(&configShowFlags.Format, "format", "f", FormatYAML, "Output format (yaml, json)")
	AddFlagValidation(configShowCmd, "format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{FormatYAML, FormatJSON})
	})

	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return configShowFlags.Encode(cmd.OutOrStdout(), cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Decode(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	result := config.Validate(cfg)
	out := cmd.OutOrStdout()
	if !result.HasErrors() && !result.HasWarnings() {
		fmt.Fprintln(out, "✅ Configuration is valid")
		return nil
	}
	fmt.Fprint(out, result.String())

	if result.HasErrors() {
		return fmt.Errorf("configuration has %d error(s)", len(result.Errors))
	}
	if configStrict {
		return fmt.Errorf("configuration has %d warning(s)", len(result.Warnings))
	}
	return nil
}
