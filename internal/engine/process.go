package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/genweave/genweave/internal/logging"
)

// ProcessEngine is the default Engine: it executes one external
// generator process per configured language. A launch succeeds when
// every language's generator exits zero.
type ProcessEngine struct {
	logger logging.Logger
}

// NewProcessEngine creates a process-backed engine.
func NewProcessEngine(logger logging.Logger) *ProcessEngine {
	return &ProcessEngine{
		logger: logger.WithComponent("engine"),
	}
}

// Launch runs every language's generator once, in language-name order so
// runs are deterministic. The boolean covers the whole pass; per-language
// diagnostics are logged, not returned.
func (e *ProcessEngine) Launch(ctx context.Context, opts Options) bool {
	names := make([]string, 0, len(opts.Languages))
	for name := range opts.Languages {
		names = append(names, name)
	}
	sort.Strings(names)

	succeeded := true
	for _, name := range names {
		if !e.launchLanguage(ctx, opts, opts.Languages[name]) {
			succeeded = false
		}
	}

	return succeeded
}

func (e *ProcessEngine) launchLanguage(ctx context.Context, opts Options, access LanguageAccess) bool {
	if access.Command == "" {
		e.logger.Error(ctx, nil, "Language has no generator command configured",
			"language", access.Name,
		)
		return false
	}

	if err := validateCommand(access.Command, access.Args); err != nil {
		e.logger.Error(ctx, err, "Refusing to run generator command",
			"language", access.Name,
		)
		return false
	}

	args := append([]string(nil), access.Args...)
	args = append(args, opts.SourceDirs...)

	cmd := exec.CommandContext(ctx, access.Command, args...)
	cmd.Dir = opts.BaseDir
	cmd.Env = append(os.Environ(), e.environment(opts, access)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Error(ctx, ctx.Err(), "Generator run cancelled",
				"language", access.Name,
			)
			return false
		}
		e.logger.Error(ctx, err, "Generator reported errors",
			"language", access.Name,
			"output", strings.TrimSpace(string(output)),
		)
		return false
	}

	if opts.DebugLog {
		e.logger.Debug(ctx, "Generator finished",
			"language", access.Name,
			"output", strings.TrimSpace(string(output)),
		)
	}

	return true
}

// environment translates the launch options into GENWEAVE_* variables
// the external generator reads.
func (e *ProcessEngine) environment(opts Options, access LanguageAccess) []string {
	env := []string{
		"GENWEAVE_LANGUAGE=" + access.Name,
		"GENWEAVE_BASE_DIR=" + opts.BaseDir,
		"GENWEAVE_TMP_DIR=" + opts.TempDir,
		"GENWEAVE_SOURCE_DIRS=" + strings.Join(opts.SourceDirs, string(os.PathListSeparator)),
		"GENWEAVE_JAVA_SOURCE_DIRS=" + strings.Join(opts.JavaSourceDirs, string(os.PathListSeparator)),
		"GENWEAVE_CLASSPATH=" + strings.Join(opts.ClasspathEntries, string(os.PathListSeparator)),
		"GENWEAVE_MODEL_PATH=" + strings.Join(opts.ModelLookupEntries(), string(os.PathListSeparator)),
		"GENWEAVE_COMPILER_SOURCE_LEVEL=" + opts.Compiler.SourceLevel,
		"GENWEAVE_COMPILER_TARGET_LEVEL=" + opts.Compiler.TargetLevel,
		fmt.Sprintf("GENWEAVE_FAIL_ON_VALIDATION_ERROR=%t", opts.FailOnValidationError),
	}

	if access.Setup != "" {
		env = append(env, "GENWEAVE_LANGUAGE_SETUP="+access.Setup)
	}
	if opts.Encoding != "" {
		env = append(env, "GENWEAVE_ENCODING="+opts.Encoding)
	}
	if opts.Compiler.Verbose {
		env = append(env, "GENWEAVE_COMPILER_VERBOSE=true")
	}
	if opts.Clustering != nil {
		env = append(env,
			fmt.Sprintf("GENWEAVE_CLUSTER_MIN_FREE_MEMORY=%d", opts.Clustering.MinimumFreeMemory),
			fmt.Sprintf("GENWEAVE_CLUSTER_MIN_SIZE=%d", opts.Clustering.MinimumClusterSize),
			fmt.Sprintf("GENWEAVE_CLUSTER_MIN_PERCENT_FREE=%d", opts.Clustering.MinimumPercentFreeMemory),
		)
	}

	if len(opts.ResourceMap) > 0 {
		pairs := make([]string, 0, len(opts.ResourceMap))
		for name, uri := range opts.ResourceMap {
			pairs = append(pairs, name+"="+uri)
		}
		sort.Strings(pairs)
		env = append(env, "GENWEAVE_RESOURCE_MAP="+strings.Join(pairs, "\n"))
	}

	return env
}

// validateCommand rejects commands and arguments carrying shell
// metacharacters; generator invocations must not be able to smuggle in a
// shell pipeline.
func validateCommand(command string, args []string) error {
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("empty command")
	}

	for _, candidate := range append([]string{command}, args...) {
		if strings.ContainsAny(candidate, ";&|`$><\n") {
			return fmt.Errorf("argument %q contains shell metacharacters", candidate)
		}
	}

	return nil
}
