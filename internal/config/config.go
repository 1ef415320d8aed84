// Package config provides configuration management for genweave using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files and environment variable
// overrides with a GENWEAVE_ prefix. It describes one orchestrated
// generation run: the configured source languages, source roots,
// classpath, resource-map mappings, and the failure policy applied to the
// engine's result.
package config

import (
	"github.com/spf13/viper"
)

// Config is the build configuration for a single generation run.
//
// SourceRoots and JavaSourceRoots default to the project's compile source
// roots when left unset; setting either replaces the default entirely,
// there is no merging.
type Config struct {
	Encoding              string            `yaml:"encoding" mapstructure:"encoding"`
	SourceRoots           []string          `yaml:"source_roots" mapstructure:"source_roots"`
	JavaSourceRoots       []string          `yaml:"java_source_roots" mapstructure:"java_source_roots"`
	Languages             []Language        `yaml:"languages" mapstructure:"languages"`
	Classpath             []string          `yaml:"classpath" mapstructure:"classpath"`
	ClasspathLookupFilter string            `yaml:"classpath_lookup_filter" mapstructure:"classpath_lookup_filter"`
	Clustering            *ClusteringConfig `yaml:"clustering" mapstructure:"clustering"`
	Skip                  bool              `yaml:"skip" mapstructure:"skip"`
	FailOnValidationError bool              `yaml:"fail_on_validation_error" mapstructure:"fail_on_validation_error"`
	CompilerSourceLevel   string            `yaml:"compiler_source_level" mapstructure:"compiler_source_level"`
	CompilerTargetLevel   string            `yaml:"compiler_target_level" mapstructure:"compiler_target_level"`
	TmpDirectory          string            `yaml:"tmp_directory" mapstructure:"tmp_directory"`
	AutoFillResourceMap   bool              `yaml:"auto_fill_resource_map" mapstructure:"auto_fill_resource_map"`
	ProjectMappings       []ProjectMapping  `yaml:"project_mappings" mapstructure:"project_mappings"`
}

// Language configures one source language. The orchestrator treats it as
// an identifier plus a bag of engine-specific settings it does not
// interpret.
type Language struct {
	Name    string                 `yaml:"name" mapstructure:"name"`
	Setup   string                 `yaml:"setup" mapstructure:"setup"`
	Options map[string]interface{} `yaml:"options" mapstructure:"options"`
}

// ProjectMapping is an explicit resource-map entry. It is applied only
// when both fields are present.
type ProjectMapping struct {
	ProjectName string `yaml:"project_name" mapstructure:"project_name"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ClusteringConfig bounds the engine's memory use by splitting generation
// into clusters. Absent means no clustering.
type ClusteringConfig struct {
	MinimumFreeMemory        int `yaml:"minimum_free_memory" mapstructure:"minimum_free_memory"`
	MinimumClusterSize       int `yaml:"minimum_cluster_size" mapstructure:"minimum_cluster_size"`
	MinimumPercentFreeMemory int `yaml:"minimum_percent_free_memory" mapstructure:"minimum_percent_free_memory"`
}

// DefaultCompilerLevel mirrors the engine compiler's own default.
const DefaultCompilerLevel = "1.6"

// Load builds a Config from the currently bound viper state.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Workarounds for viper's handling of slices and bools that were set
	// through the config file rather than flags.
	if viper.IsSet("source_roots") && len(config.SourceRoots) == 0 {
		config.SourceRoots = viper.GetStringSlice("source_roots")
	}
	if viper.IsSet("java_source_roots") && len(config.JavaSourceRoots) == 0 {
		config.JavaSourceRoots = viper.GetStringSlice("java_source_roots")
	}
	if viper.IsSet("classpath") && len(config.Classpath) == 0 {
		config.Classpath = viper.GetStringSlice("classpath")
	}

	// Unset source-root lists stay nil so the orchestrator can fall back
	// to the project's compile source roots. An explicitly configured
	// empty list replaces that default, it does not merge.
	if len(config.SourceRoots) == 0 && !viper.IsSet("source_roots") {
		config.SourceRoots = nil
	}
	if len(config.JavaSourceRoots) == 0 && !viper.IsSet("java_source_roots") {
		config.JavaSourceRoots = nil
	}
	if viper.IsSet("skip") {
		config.Skip = viper.GetBool("skip")
	}
	if viper.IsSet("auto_fill_resource_map") {
		config.AutoFillResourceMap = viper.GetBool("auto_fill_resource_map")
	}
	if viper.IsSet("fail_on_validation_error") {
		config.FailOnValidationError = viper.GetBool("fail_on_validation_error")
	} else {
		config.FailOnValidationError = true
	}

	applyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.CompilerSourceLevel == "" {
		config.CompilerSourceLevel = DefaultCompilerLevel
	}
	if config.CompilerTargetLevel == "" {
		config.CompilerTargetLevel = DefaultCompilerLevel
	}
}
