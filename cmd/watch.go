package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/engine"
	"github.com/genweave/genweave/internal/orchestrator"
	"github.com/genweave/genweave/internal/project"
	"github.com/genweave/genweave/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Regenerate whenever sources change",
	Long: `Run the generation pass, then keep watching the source roots and
rerun it after every debounced batch of changes. Each rerun goes through
the same process-wide build guard as a plain generate.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addGenerationFlags(watchCmd.Flags())
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Delay before a batch of changes triggers regeneration")
}

func runWatch(cmd *cobra.Command, args []string) error {
	bindGenerationFlags(cmd.Flags())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Skip {
		fmt.Println("Generation skipped.")
		return nil
	}

	proj, err := project.Load(projectDir)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	logger := newLogger()
	o := orchestrator.New(buildGuard, resourceStore, engine.NewProcessEngine(logger), logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial pass; fatal errors end watch mode before watching starts.
	if _, err := o.Run(ctx, cfg, proj); err != nil {
		return err
	}

	w, err := watcher.New(watchDebounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	w.AddFilter(watcher.NoHiddenFilter)
	w.AddFilter(watcher.ExtensionFilter(languageExtensions(cfg)))
	w.AddHandler(func(events []watcher.ChangeEvent) error {
		logger.Info(ctx, "Sources changed, regenerating", "changes", len(events))
		_, runErr := o.Run(ctx, cfg, proj)
		return runErr
	})

	roots := cfg.SourceRoots
	if roots == nil {
		roots = proj.CompileSourceRoots
	}
	for _, root := range roots {
		if err := w.AddRecursive(root); err != nil {
			logger.Warn(ctx, err, "Cannot watch source root", "root", root)
		}
	}

	w.Start(ctx)
	fmt.Println("Watching for changes. Press Ctrl+C to stop.")

	<-ctx.Done()
	return nil
}

// languageExtensions collects the file extensions declared by the
// configured languages. Languages without declared extensions widen the
// watch to every file.
func languageExtensions(cfg *config.Config) []string {
	var extensions []string
	for _, language := range cfg.Languages {
		raw, ok := language.Options["file_extensions"]
		if !ok {
			return nil
		}
		switch typed := raw.(type) {
		case []string:
			extensions = append(extensions, typed...)
		case []interface{}:
			for _, item := range typed {
				if str, ok := item.(string); ok {
					extensions = append(extensions, str)
				}
			}
		}
	}
	return extensions
}
