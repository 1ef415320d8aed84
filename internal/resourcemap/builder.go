package resourcemap

import (
	"context"
	"path/filepath"

	"github.com/genweave/genweave/internal/logging"
	"github.com/genweave/genweave/internal/project"
)

// Mapping is an explicit name → path override supplied by the user. A
// mapping is only applied when both fields are present; partial mappings
// are skipped silently.
type Mapping struct {
	ProjectName string
	Path        string
}

// Builder populates a Store from a project hierarchy and from explicit
// user mappings.
type Builder struct {
	store  *Store
	logger logging.Logger
}

// NewBuilder creates a builder writing into store.
func NewBuilder(store *Store, logger logging.Logger) *Builder {
	return &Builder{
		store:  store,
		logger: logger.WithComponent("resourcemap"),
	}
}

// AutoRegister walks the project hierarchy and registers every location
// under its directory name. The walk order is load-bearing: the project
// itself, then its declared modules, then the parent with the same
// algorithm, up the whole ancestor chain. Last write wins, so when a
// module shares its directory name with an ancestor the ancestor's entry
// is the one that survives. Do not reorder this walk.
func (b *Builder) AutoRegister(ctx context.Context, p *project.Project) {
	for current := p; current != nil; current = current.Parent {
		b.register(ctx, current.BaseDir)
		for _, module := range current.Modules {
			b.register(ctx, current.ModuleDir(module))
		}
	}
}

// ApplyOverrides registers the explicit mappings in declaration order.
// Overrides are applied strictly after auto-discovery, so a mapping
// always wins over a same-named auto-discovered entry; among the
// mappings themselves the last one for a given name wins.
func (b *Builder) ApplyOverrides(ctx context.Context, mappings []Mapping) {
	for _, mapping := range mappings {
		if mapping.ProjectName == "" || mapping.Path == "" {
			continue
		}

		path, err := filepath.Abs(mapping.Path)
		if err != nil {
			b.logger.Warn(ctx, err, "Skipping project mapping with unresolvable path",
				"project", mapping.ProjectName,
				"path", mapping.Path,
			)
			continue
		}

		uri := CanonicalURI(path)
		b.store.Put(mapping.ProjectName, uri)
		b.logger.Info(ctx, "Adding project to resource map",
			"project", mapping.ProjectName,
			"uri", uri,
		)
	}
}

func (b *Builder) register(ctx context.Context, dir string) {
	name := filepath.Base(dir)
	uri := CanonicalURI(dir)

	b.store.Put(name, uri)
	b.logger.Info(ctx, "Adding project to resource map",
		"project", name,
		"uri", uri,
	)
}
