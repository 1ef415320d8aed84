package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// addGenerationFlags defines the flags shared by generate, watch, and
// config.
func addGenerationFlags(flags *pflag.FlagSet) {
	flags.Bool("skip", false, "Skip the generation run entirely")
	flags.Bool("fail-on-validation-error", true, "Fail the build when the engine reports validation errors")
	flags.Bool("auto-fill-resource-map", false, "Scan the project and its ancestors into the resource map")
	flags.String("encoding", "", "File encoding for the generator (default: engine encoding provider)")
	flags.StringSlice("source-root", nil, "Source root (replaces the project default entirely; repeatable)")
	flags.StringSlice("java-source-root", nil, "Java source root (replaces the project default entirely; repeatable)")
	flags.StringSlice("classpath-entry", nil, "Classpath entry (repeatable)")
	flags.String("classpath-lookup-filter", "", "Regex filtering classpath entries during model lookup")
	flags.String("tmp-directory", "", "Temporary output directory for the engine")
	flags.String("compiler-source-level", "", "Compiler source level passed to the engine")
	flags.String("compiler-target-level", "", "Compiler target level passed to the engine")
}

// bindGenerationFlags binds the running command's flag set to the
// configuration keys. Binding happens at run time, not init time,
// because several commands define the same flags and only the executing
// command's values may win.
func bindGenerationFlags(flags *pflag.FlagSet) {
	bindings := map[string]string{
		"skip":                     "skip",
		"fail_on_validation_error": "fail-on-validation-error",
		"auto_fill_resource_map":   "auto-fill-resource-map",
		"encoding":                 "encoding",
		"source_roots":             "source-root",
		"java_source_roots":        "java-source-root",
		"classpath":                "classpath-entry",
		"classpath_lookup_filter":  "classpath-lookup-filter",
		"tmp_directory":            "tmp-directory",
		"compiler_source_level":    "compiler-source-level",
		"compiler_target_level":    "compiler-target-level",
	}
	for key, flagName := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flagName))
	}
}
