package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genweave/genweave/internal/errors"
)

func validConfig() *Config {
	return &Config{
		Languages: []Language{{Name: "mydsl", Setup: "mydsl.Setup"}},
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("languages", []map[string]interface{}{{"name": "mydsl"}})

	config, err := Load()
	require.NoError(t, err)

	assert.True(t, config.FailOnValidationError)
	assert.False(t, config.Skip)
	assert.False(t, config.AutoFillResourceMap)
	assert.Equal(t, DefaultCompilerLevel, config.CompilerSourceLevel)
	assert.Equal(t, DefaultCompilerLevel, config.CompilerTargetLevel)
	assert.Nil(t, config.SourceRoots)
	assert.Nil(t, config.JavaSourceRoots)
	assert.Nil(t, config.Clustering)
}

func TestLoad_FailOnValidationErrorCanBeDisabled(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("languages", []map[string]interface{}{{"name": "mydsl"}})
	viper.Set("fail_on_validation_error", false)

	config, err := Load()
	require.NoError(t, err)

	assert.False(t, config.FailOnValidationError)
}

func TestLoad_SkippedRunNeedsNoLanguages(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("skip", true)

	config, err := Load()
	require.NoError(t, err)

	assert.True(t, config.Skip)
}

func TestValidate_RequiresLanguages(t *testing.T) {
	err := Validate(&Config{})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate_RejectsDuplicateLanguages(t *testing.T) {
	err := Validate(&Config{
		Languages: []Language{{Name: "mydsl"}, {Name: "mydsl"}},
	})

	require.Error(t, err)
}

func TestValidate_Encoding(t *testing.T) {
	config := validConfig()
	config.Encoding = "UTF-8"
	assert.NoError(t, Validate(config))

	config.Encoding = "ISO-8859-1"
	assert.NoError(t, Validate(config))

	config.Encoding = "not-an-encoding"
	err := Validate(config)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate_EmptyEncodingIsValid(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidate_LookupFilter(t *testing.T) {
	config := validConfig()
	config.ClasspathLookupFilter = `.*\.jar$`
	assert.NoError(t, Validate(config))

	config.ClasspathLookupFilter = "([unclosed"
	err := Validate(config)
	require.Error(t, err)
}

func TestValidate_Clustering(t *testing.T) {
	config := validConfig()
	config.Clustering = &ClusteringConfig{
		MinimumFreeMemory:        50,
		MinimumClusterSize:       20,
		MinimumPercentFreeMemory: 10,
	}
	assert.NoError(t, Validate(config))

	config.Clustering.MinimumPercentFreeMemory = 150
	assert.Error(t, Validate(config))

	config.Clustering = &ClusteringConfig{MinimumClusterSize: -1}
	assert.Error(t, Validate(config))
}
