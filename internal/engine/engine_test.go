package engine

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelLookupEntries_NoFilter(t *testing.T) {
	opts := Options{
		ClasspathEntries: []string{"/lib/a.jar", "/lib/b.zip"},
	}

	assert.Equal(t, opts.ClasspathEntries, opts.ModelLookupEntries())
}

func TestModelLookupEntries_Filter(t *testing.T) {
	opts := Options{
		ClasspathEntries:      []string{"/lib/a.jar", "/lib/b.zip", "/lib/c.jar"},
		ClasspathLookupFilter: regexp.MustCompile(`\.jar$`),
	}

	assert.Equal(t, []string{"/lib/a.jar", "/lib/c.jar"}, opts.ModelLookupEntries())
}

func TestModelLookupEntries_FilterMatchingNothing(t *testing.T) {
	opts := Options{
		ClasspathEntries:      []string{"/lib/a.jar"},
		ClasspathLookupFilter: regexp.MustCompile(`\.aar$`),
	}

	assert.Empty(t, opts.ModelLookupEntries())
}
