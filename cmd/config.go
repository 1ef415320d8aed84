package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genweave/genweave/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration a generation run would use after merging
flags, environment variables, and the configuration file.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	addGenerationFlags(configCmd.Flags())
}

func runConfig(cmd *cobra.Command, args []string) error {
	bindGenerationFlags(cmd.Flags())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer func() { _ = encoder.Close() }()

	return encoder.Encode(cfg)
}
