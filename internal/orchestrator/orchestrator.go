// Package orchestrator coordinates one generation run: it applies
// configuration defaults, populates the shared resource map, assembles
// the engine's inputs, launches the engine exactly once, and turns the
// engine's boolean result into a build outcome.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/genweave/genweave/internal/classpath"
	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/engine"
	"github.com/genweave/genweave/internal/errors"
	"github.com/genweave/genweave/internal/guard"
	"github.com/genweave/genweave/internal/logging"
	"github.com/genweave/genweave/internal/project"
	"github.com/genweave/genweave/internal/resourcemap"
)

// Outcome is the terminal state of a run. A fatal failure is reported as
// a non-nil error instead, because it must stop the build.
type Outcome int

const (
	// OutcomeSkipped means the skip flag short-circuited the run.
	OutcomeSkipped Outcome = iota
	// OutcomeSucceeded means the engine launched successfully.
	OutcomeSucceeded
	// OutcomeSoftFailed means the engine reported errors but the run is
	// configured to tolerate them; the build proceeds and visibility is
	// left to the engine's own reporting.
	OutcomeSoftFailed
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSoftFailed:
		return "soft-failed"
	default:
		return "unknown"
	}
}

// Orchestrator drives generation runs. The guard and the resource map
// store are injected and shared process-wide; the orchestrator itself
// holds no run state and may be reused.
type Orchestrator struct {
	guard  *guard.InvocationGuard
	store  *resourcemap.Store
	engine engine.Engine
	logger logging.Logger
}

// New creates an orchestrator using the given shared guard and store.
func New(g *guard.InvocationGuard, store *resourcemap.Store, eng engine.Engine, logger logging.Logger) *Orchestrator {
	return &Orchestrator{
		guard:  g,
		store:  store,
		engine: eng,
		logger: logger.WithComponent("orchestrator"),
	}
}

// Run executes one generation run for the given project. Concurrent
// calls serialize on the guard; the guarded body must not call Run
// again, the guard is not reentrant.
func (o *Orchestrator) Run(ctx context.Context, cfg *config.Config, proj *project.Project) (Outcome, error) {
	if cfg.Skip {
		o.logger.Info(ctx, "skipped.")
		return OutcomeSkipped, nil
	}

	outcome := OutcomeSucceeded
	err := o.guard.WithExclusiveAccess(func() error {
		var err error
		outcome, err = o.runGuarded(ctx, cfg, proj)
		return err
	})

	return outcome, err
}

func (o *Orchestrator) runGuarded(ctx context.Context, cfg *config.Config, proj *project.Project) (Outcome, error) {
	sourceRoots := cfg.SourceRoots
	if sourceRoots == nil {
		sourceRoots = append([]string(nil), proj.CompileSourceRoots...)
	}
	javaSourceRoots := cfg.JavaSourceRoots
	if javaSourceRoots == nil {
		javaSourceRoots = append([]string(nil), proj.CompileSourceRoots...)
	}

	builder := resourcemap.NewBuilder(o.store, o.logger)
	if cfg.AutoFillResourceMap {
		builder.AutoRegister(ctx, proj)
	}
	builder.ApplyOverrides(ctx, overrideMappings(cfg.ProjectMappings))

	languages, err := engine.CreateLanguageAccess(cfg.Languages)
	if err != nil {
		return OutcomeSucceeded, err
	}

	resolvedClasspath := classpath.Resolve(cfg.Classpath, proj.OutputDir, proj.TestOutputDir)

	tempDir, err := o.createTempDir(cfg, proj)
	if err != nil {
		return OutcomeSucceeded, err
	}

	lookupFilter, err := compileLookupFilter(cfg.ClasspathLookupFilter)
	if err != nil {
		return OutcomeSucceeded, err
	}

	debug := o.logger.DebugEnabled()
	opts := engine.Options{
		BaseDir:               proj.BaseDir,
		Languages:             languages,
		Encoding:              cfg.Encoding,
		ClasspathEntries:      resolvedClasspath,
		ClasspathLookupFilter: lookupFilter,
		SourceDirs:            sourceRoots,
		JavaSourceDirs:        javaSourceRoots,
		FailOnValidationError: cfg.FailOnValidationError,
		TempDir:               tempDir,
		DebugLog:              debug,
		Clustering:            clusteringOptions(cfg.Clustering),
		Compiler: engine.CompilerOptions{
			SourceLevel: cfg.CompilerSourceLevel,
			TargetLevel: cfg.CompilerTargetLevel,
			Verbose:     debug,
		},
		ResourceMap: o.store.Snapshot(),
	}

	o.logState(ctx, cfg, opts)

	if !o.engine.Launch(ctx, opts) {
		if cfg.FailOnValidationError {
			return OutcomeSucceeded, errors.NewValidationError("LAUNCH",
				"Execution failed due to a severe validation error.")
		}
		return OutcomeSoftFailed, nil
	}

	return OutcomeSucceeded, nil
}

// createTempDir creates the engine's temporary output directory if it is
// absent. A directory that cannot be created and does not exist is a
// configuration error that aborts the run before the engine starts.
func (o *Orchestrator) createTempDir(cfg *config.Config, proj *project.Project) (string, error) {
	tempDir := cfg.TmpDirectory
	if tempDir == "" {
		tempDir = filepath.Join(proj.BaseDir, "target", "genweave-temp")
	} else if !filepath.IsAbs(tempDir) {
		tempDir = filepath.Join(proj.BaseDir, tempDir)
	}

	if mkdirErr := os.MkdirAll(tempDir, 0755); mkdirErr != nil {
		if info, statErr := os.Stat(tempDir); statErr != nil || !info.IsDir() {
			return "", errors.NewConfigError("TEMP_DIR",
				fmt.Sprintf("couldn't create directory %q", tempDir), mkdirErr)
		}
	}

	return tempDir, nil
}

func (o *Orchestrator) logState(ctx context.Context, cfg *config.Config, opts engine.Options) {
	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "not set. Encoding provider will be used."
	}
	o.logger.Info(ctx, "Encoding: "+encoding)
	o.logger.Info(ctx, "Compiler source level: "+opts.Compiler.SourceLevel)
	o.logger.Info(ctx, "Compiler target level: "+opts.Compiler.TargetLevel)

	if o.logger.DebugEnabled() {
		o.logger.Debug(ctx, "Source dirs: "+strings.Join(opts.SourceDirs, ", "))
		o.logger.Debug(ctx, "Java source dirs: "+strings.Join(opts.JavaSourceDirs, ", "))
		o.logger.Debug(ctx, "Classpath entries: "+strings.Join(opts.ClasspathEntries, ", "))
	}
}

func overrideMappings(mappings []config.ProjectMapping) []resourcemap.Mapping {
	result := make([]resourcemap.Mapping, len(mappings))
	for i, mapping := range mappings {
		result[i] = resourcemap.Mapping{
			ProjectName: mapping.ProjectName,
			Path:        mapping.Path,
		}
	}
	return result
}

func clusteringOptions(cfg *config.ClusteringConfig) *engine.ClusteringOptions {
	if cfg == nil {
		return nil
	}
	return &engine.ClusteringOptions{
		MinimumFreeMemory:        cfg.MinimumFreeMemory,
		MinimumClusterSize:       cfg.MinimumClusterSize,
		MinimumPercentFreeMemory: cfg.MinimumPercentFreeMemory,
	}
}

func compileLookupFilter(filter string) (*regexp.Regexp, error) {
	if filter == "" {
		return nil, nil
	}

	compiled, err := regexp.Compile(filter)
	if err != nil {
		return nil, errors.NewConfigError("LOOKUP_FILTER",
			fmt.Sprintf("invalid classpath lookup filter %q", filter), err)
	}
	return compiled, nil
}
