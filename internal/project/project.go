// Package project models the project hierarchy genweave operates on: a
// base directory with build output locations, compile source roots,
// declared child modules, and an optional parent project.
//
// Projects are described by a genweave.project.yml descriptor in the
// project's base directory. Parent links are relative paths, so the whole
// ancestor chain can be walked from any module.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/genweave/genweave/internal/errors"
)

// DescriptorFileName is the per-directory project descriptor.
const DescriptorFileName = "genweave.project.yml"

// Project is a loaded project with its ancestor chain resolved.
type Project struct {
	BaseDir            string
	OutputDir          string
	TestOutputDir      string
	CompileSourceRoots []string
	Modules            []string
	Parent             *Project
}

// descriptor is the on-disk shape of genweave.project.yml.
type descriptor struct {
	OutputDir     string   `yaml:"output_dir"`
	TestOutputDir string   `yaml:"test_output_dir"`
	SourceRoots   []string `yaml:"source_roots"`
	Modules       []string `yaml:"modules"`
	Parent        string   `yaml:"parent"`
}

// Name returns the project's logical name, the last segment of its base
// directory.
func (p *Project) Name() string {
	return filepath.Base(p.BaseDir)
}

// ModuleDir resolves a declared module's relative path against the
// project base directory.
func (p *Project) ModuleDir(module string) string {
	return filepath.Join(p.BaseDir, module)
}

// Load reads the project rooted at dir, following parent links until a
// project without a parent is reached.
func Load(dir string) (*Project, error) {
	return load(dir, map[string]bool{})
}

func load(dir string, visited map[string]bool) (*Project, error) {
	baseDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewIOError("PROJECT_DIR", fmt.Sprintf("resolving project directory %q", dir), err)
	}

	if visited[baseDir] {
		return nil, errors.NewConfigError("PROJECT_CYCLE",
			fmt.Sprintf("project %q appears twice in its own ancestor chain", baseDir), nil)
	}
	visited[baseDir] = true

	desc, err := readDescriptor(baseDir)
	if err != nil {
		return nil, err
	}

	p := &Project{
		BaseDir:       baseDir,
		OutputDir:     resolveAgainst(baseDir, desc.OutputDir, filepath.Join("target", "classes")),
		TestOutputDir: resolveAgainst(baseDir, desc.TestOutputDir, filepath.Join("target", "test-classes")),
		Modules:       desc.Modules,
	}

	if len(desc.SourceRoots) > 0 {
		p.CompileSourceRoots = make([]string, len(desc.SourceRoots))
		for i, root := range desc.SourceRoots {
			p.CompileSourceRoots[i] = resolveAgainst(baseDir, root, "")
		}
	} else {
		p.CompileSourceRoots = []string{filepath.Join(baseDir, "src")}
	}

	if desc.Parent != "" {
		parent, err := load(filepath.Join(baseDir, desc.Parent), visited)
		if err != nil {
			return nil, err
		}
		p.Parent = parent
	}

	return p, nil
}

func readDescriptor(baseDir string) (*descriptor, error) {
	path := filepath.Join(baseDir, DescriptorFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// A directory without a descriptor is still a valid leaf
			// project; everything defaults.
			return &descriptor{}, nil
		}
		return nil, errors.NewIOError("PROJECT_DESCRIPTOR", fmt.Sprintf("reading %q", path), err)
	}

	var desc descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, errors.NewConfigError("PROJECT_DESCRIPTOR", fmt.Sprintf("parsing %q", path), err)
	}

	return &desc, nil
}

func resolveAgainst(baseDir, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
