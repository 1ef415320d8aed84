// Package classpath normalizes the raw classpath handed to the generation
// engine into an ordered, duplicate-free set.
package classpath

import "strings"

// Resolve normalizes rawEntries into an insertion-ordered set: duplicates
// collapse onto their first occurrence, entries that are empty or
// whitespace-only after trimming are dropped, and exact matches of the
// project's main and test output directories are removed so generation
// never feeds the project's own build output back into itself.
//
// Entries are compared and returned verbatim; no path cleaning and no
// filesystem access happens here.
func Resolve(rawEntries []string, outputDir, testOutputDir string) []string {
	resolved := make([]string, 0, len(rawEntries))
	seen := make(map[string]struct{}, len(rawEntries))

	for _, entry := range rawEntries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		if entry == outputDir || entry == testOutputDir {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		resolved = append(resolved, entry)
	}

	return resolved
}
