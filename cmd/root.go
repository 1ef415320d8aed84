// Package cmd provides the command-line interface for genweave with
// configuration management supporting multiple configuration sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--skip, --encoding, ...)
//  2. GENWEAVE_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (GENWEAVE_SKIP, ...)
//  4. Configuration file (.genweave.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genweave/genweave/internal/guard"
	"github.com/genweave/genweave/internal/logging"
	"github.com/genweave/genweave/internal/resourcemap"
)

var (
	cfgFile    string
	projectDir string
)

// The guard and the resource map are process-wide: the guard serializes
// every orchestration run in this process, and the map accumulates
// registrations across runs for the process lifetime. Both are created
// once here and injected everywhere else.
var (
	buildGuard    = guard.New()
	resourceStore = resourcemap.NewStore()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "genweave",
	Short: "Orchestrates multi-language source generation as a build step",
	Long: `genweave coordinates a multi-language source-generation pass over a
project tree: it assembles source roots and the classpath, resolves the
cross-project resource map, invokes the generation engine once per run,
and decides whether generation errors fail the build.

Quick Start:
  genweave generate               Run the generation pass once
  genweave watch                  Regenerate when sources change
  genweave config                 Show the effective configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .genweave.yml, can also use GENWEAVE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "project directory holding the genweave.project.yml descriptor")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("GENWEAVE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".genweave")
	}

	viper.SetEnvPrefix("GENWEAVE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; flags and env vars carry the rest.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the run logger from the effective log settings.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
		Output: os.Stderr,
	})
}
