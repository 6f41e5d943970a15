// Package cmd provides the iconward command-line interface.
//
// Configuration is resolved with clear precedence:
//  1. Command-line flags (--config, --port, ...)
//  2. ICONWARD_CONFIG_FILE environment variable for the config file path
//  3. Individual environment variables (ICONWARD_UPLOADS_BASE_DIR, ...)
//  4. The .iconward.yml file in the current directory
//
// Environment variables follow the ICONWARD_<SECTION>_<OPTION> pattern.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/iconward/internal/config"
	"github.com/conneroisu/iconward/internal/services"
)

const configFileEnv = "ICONWARD_CONFIG_FILE"

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iconward",
	Short: "Ingest, sanitize and serve SVG icon sets",
	Long: `Iconward merges a built-in SVG icon set with administrator-uploaded
custom icons. Every custom icon is sanitized against a strict allowlist and
checked for external references before it reaches a page.

Quick Start:
  iconward list                   Show the merged icon manifest
  iconward validate logo.svg      Check files before uploading them
  iconward serve                  Serve icons, manifest and gallery
  iconward watch                  Rebuild the catalog when uploads change

Custom icons are read from <uploads.base_dir>/<icons.custom_subdir>.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .iconward.yml, can also use "+configFileEnv+" env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
}

// initConfig points viper at the config file and enables ICONWARD_ environment
// overrides. A missing default config file is not an error; an explicit one is.
func initConfig(cmd *cobra.Command, _ []string) error {
	explicit := true
	switch {
	case cfgFile != "":
		viper.SetConfigFile(cfgFile)
	case os.Getenv(configFileEnv) != "":
		viper.SetConfigFile(os.Getenv(configFileEnv))
	default:
		explicit = false
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".iconward")
	}

	viper.SetEnvPrefix("ICONWARD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}

	return bindFlags(cmd, map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
	})
}

// bindFlags binds the named flags of cmd to viper configuration keys.
// A flag that was not set on the command line leaves the key to the
// config file, environment or default.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for flagName, key := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding --%s: %w", flagName, err)
		}
	}
	return nil
}

// loadContainer resolves the configuration and wires the services it names.
func loadContainer(cmd *cobra.Command) (*services.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := services.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	container, err := services.NewContainer(cfg, logger.WithComponent("iconward"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return container, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
