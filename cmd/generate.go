package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/engine"
	"github.com/genweave/genweave/internal/orchestrator"
	"github.com/genweave/genweave/internal/project"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen", "g"},
	Short:   "Run the source-generation pass once",
	Long: `Run the configured generation engine once over the project.

The run acquires the process-wide build guard, populates the resource
map (auto-discovery first, explicit mappings second), resolves the
classpath, and launches the engine. Whether an engine failure stops the
build is governed by fail-on-validation-error.

Examples:
  genweave generate                          # One generation run
  genweave generate --skip                   # Report "skipped" and do nothing
  genweave generate --auto-fill-resource-map # Register the project tree first`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGenerationFlags(generateCmd.Flags())
}

func runGenerate(cmd *cobra.Command, args []string) error {
	bindGenerationFlags(cmd.Flags())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	proj, err := project.Load(projectDir)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	logger := newLogger()
	o := orchestrator.New(buildGuard, resourceStore, engine.NewProcessEngine(logger), logger)

	outcome, err := o.Run(cmd.Context(), cfg, proj)
	if err != nil {
		return err
	}

	switch outcome {
	case orchestrator.OutcomeSkipped:
		fmt.Println("Generation skipped.")
	case orchestrator.OutcomeSoftFailed:
		fmt.Println("Generation reported errors; continuing because fail-on-validation-error is disabled.")
	default:
		fmt.Println("Generation finished.")
	}

	return nil
}
