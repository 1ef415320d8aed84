package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genweave/genweave/internal/config"
	"github.com/genweave/genweave/internal/errors"
)

func TestCreateLanguageAccess(t *testing.T) {
	languages := []config.Language{
		{
			Name:  "mydsl",
			Setup: "mydsl.MyDslStandaloneSetup",
			Options: map[string]interface{}{
				"command":         "mydsl-gen",
				"args":            []interface{}{"--strict"},
				"file_extensions": []interface{}{".mydsl"},
				"custom":          "passed-through",
			},
		},
		{Name: "otherdsl"},
	}

	accesses, err := CreateLanguageAccess(languages)
	require.NoError(t, err)
	require.Len(t, accesses, 2)

	mydsl := accesses["mydsl"]
	assert.Equal(t, "mydsl-gen", mydsl.Command)
	assert.Equal(t, []string{"--strict"}, mydsl.Args)
	assert.Equal(t, []string{".mydsl"}, mydsl.FileExtensions)
	assert.Equal(t, "mydsl.MyDslStandaloneSetup", mydsl.Setup)
	assert.Equal(t, "passed-through", mydsl.Options["custom"])

	other := accesses["otherdsl"]
	assert.Empty(t, other.Command)
	assert.Nil(t, other.Args)
}

func TestCreateLanguageAccess_StringSlices(t *testing.T) {
	// Options set programmatically carry []string instead of the
	// []interface{} YAML decoding produces.
	accesses, err := CreateLanguageAccess([]config.Language{
		{
			Name:    "mydsl",
			Options: map[string]interface{}{"args": []string{"-v"}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"-v"}, accesses["mydsl"].Args)
}

func TestCreateLanguageAccess_RejectsBadCommandType(t *testing.T) {
	_, err := CreateLanguageAccess([]config.Language{
		{
			Name:    "mydsl",
			Options: map[string]interface{}{"command": 42},
		},
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestCreateLanguageAccess_RejectsBadListType(t *testing.T) {
	_, err := CreateLanguageAccess([]config.Language{
		{
			Name:    "mydsl",
			Options: map[string]interface{}{"args": "not-a-list"},
		},
	})

	require.Error(t, err)

	_, err = CreateLanguageAccess([]config.Language{
		{
			Name:    "mydsl",
			Options: map[string]interface{}{"args": []interface{}{1, 2}},
		},
	})

	require.Error(t, err)
}
