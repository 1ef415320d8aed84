package config

import (
	"fmt"
	"regexp"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/genweave/genweave/internal/errors"
)

// Validate checks a loaded configuration before a run is attempted.
// A skipped run only needs to be well-formed enough to be skipped, so
// language requirements are not enforced when Skip is set.
func Validate(config *Config) error {
	if err := validateEncoding(config.Encoding); err != nil {
		return err
	}

	if config.ClasspathLookupFilter != "" {
		if _, err := regexp.Compile(config.ClasspathLookupFilter); err != nil {
			return errors.NewConfigError("LOOKUP_FILTER",
				fmt.Sprintf("invalid classpath lookup filter %q", config.ClasspathLookupFilter), err)
		}
	}

	if !config.Skip {
		if len(config.Languages) == 0 {
			return errors.NewConfigError("LANGUAGES", "at least one language must be configured", nil)
		}

		seen := make(map[string]struct{}, len(config.Languages))
		for _, language := range config.Languages {
			if language.Name == "" {
				return errors.NewConfigError("LANGUAGES", "language with empty name", nil)
			}
			if _, dup := seen[language.Name]; dup {
				return errors.NewConfigError("LANGUAGES",
					fmt.Sprintf("language %q configured twice", language.Name), nil)
			}
			seen[language.Name] = struct{}{}
		}
	}

	if config.Clustering != nil {
		if config.Clustering.MinimumClusterSize < 0 ||
			config.Clustering.MinimumFreeMemory < 0 ||
			config.Clustering.MinimumPercentFreeMemory < 0 ||
			config.Clustering.MinimumPercentFreeMemory > 100 {
			return errors.NewConfigError("CLUSTERING", "clustering values out of range", nil)
		}
	}

	return nil
}

// validateEncoding resolves the configured encoding name against the
// IANA registry. An empty name is valid and means the engine's own
// encoding provider decides.
func validateEncoding(name string) error {
	if name == "" {
		return nil
	}

	if _, err := ianaindex.IANA.Encoding(name); err != nil {
		return errors.NewConfigError("ENCODING",
			fmt.Sprintf("unknown encoding %q", name), err)
	}

	return nil
}
