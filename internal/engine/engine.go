// Package engine defines the boundary to the external generation engine:
// the options the orchestrator assembles for it, the per-language access
// table, and a process-backed default implementation that shells out to
// each language's generator command.
package engine

import (
	"context"
	"regexp"
)

// Options carries everything the engine needs for one launch. The
// orchestrator assembles it; the engine does not reach back into any
// other component.
type Options struct {
	BaseDir               string
	Languages             map[string]LanguageAccess
	Encoding              string
	ClasspathEntries      []string
	ClasspathLookupFilter *regexp.Regexp
	SourceDirs            []string
	JavaSourceDirs        []string
	FailOnValidationError bool
	TempDir               string
	DebugLog              bool
	Clustering            *ClusteringOptions
	Compiler              CompilerOptions
	ResourceMap           map[string]string
}

// CompilerOptions is the pass-through compiler configuration.
type CompilerOptions struct {
	SourceLevel string
	TargetLevel string
	Verbose     bool
}

// ClusteringOptions is the engine-side form of the clustering settings.
type ClusteringOptions struct {
	MinimumFreeMemory        int
	MinimumClusterSize       int
	MinimumPercentFreeMemory int
}

// Engine runs one generation pass over the configured inputs. Launch is
// invoked exactly once per orchestration run and reports whether the
// pass completed without severe validation errors. Diagnostics are the
// engine's own responsibility; the orchestrator only interprets the
// boolean.
type Engine interface {
	Launch(ctx context.Context, opts Options) bool
}

// ModelLookupEntries returns the classpath entries the engine should
// scan for models: all of them when no lookup filter is configured,
// otherwise only the matching ones.
func (o *Options) ModelLookupEntries() []string {
	if o.ClasspathLookupFilter == nil {
		return o.ClasspathEntries
	}

	matched := make([]string, 0, len(o.ClasspathEntries))
	for _, entry := range o.ClasspathEntries {
		if o.ClasspathLookupFilter.MatchString(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}
