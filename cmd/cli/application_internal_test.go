package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repomerge/internal/merge"
	"github.com/temirov/repomerge/internal/utils"
)

func TestResolveLogLevel(testInstance *testing.T) {
	testCases := []struct {
		name            string
		configuredLevel string
		flags           flagValues
		expectedLevel   utils.LogLevel
	}{
		{name: "configured_level", configuredLevel: "warn", expectedLevel: utils.LogLevelWarn},
		{name: "configured_level_normalized", configuredLevel: " ERROR ", expectedLevel: utils.LogLevelError},
		{name: "verbose_lowers_to_info", configuredLevel: "warn", flags: flagValues{verbose: true}, expectedLevel: utils.LogLevelInfo},
		{name: "verbose_keeps_debug", configuredLevel: "debug", flags: flagValues{verbose: true}, expectedLevel: utils.LogLevelDebug},
		{name: "debug_wins_over_verbose", configuredLevel: "warn", flags: flagValues{verbose: true, debug: true}, expectedLevel: utils.LogLevelDebug},
		{name: "explicit_level_wins", configuredLevel: "warn", flags: flagValues{debug: true, logLevel: "error"}, expectedLevel: utils.LogLevelError},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedLevel, resolveLogLevel(testCase.configuredLevel, testCase.flags))
		})
	}
}

func TestSessionConfigurationConflictPolicy(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		configuredPolicy      merge.ConflictPolicy
		flags                 flagValues
		expectedFavorBase     bool
		expectedFavorIncoming bool
	}{
		{name: "none", configuredPolicy: merge.ConflictPolicyNone},
		{name: "configured_base", configuredPolicy: merge.ConflictPolicyFavorBase, expectedFavorBase: true},
		{name: "configured_incoming", configuredPolicy: merge.ConflictPolicyFavorIncoming, expectedFavorIncoming: true},
		{name: "flag_overrides_configured_policy", configuredPolicy: merge.ConflictPolicyFavorBase, flags: flagValues{favorIncoming: true}, expectedFavorIncoming: true},
		{name: "flag_without_configuration", configuredPolicy: merge.ConflictPolicyNone, flags: flagValues{favorBase: true}, expectedFavorBase: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sessionConfig := sessionConfiguration(MergeConfiguration{ConflictPolicy: testCase.configuredPolicy}, testCase.flags)
			require.Equal(testInstance, testCase.expectedFavorBase, sessionConfig.FavorBase)
			require.Equal(testInstance, testCase.expectedFavorIncoming, sessionConfig.FavorIncoming)
		})
	}
}

func TestSessionConfigurationCopiesSettings(testInstance *testing.T) {
	sessionConfig := sessionConfiguration(MergeConfiguration{
		BaseRepositoryURL:     "https://example.com/acme/base.git",
		IncomingRepositoryURL: "https://example.com/acme/widgets.git",
		Subdirectory:          "widgets",
		IncomingBranch:        "develop",
		BaseBranch:            "main",
		Smart:                 true,
		ShowDiff:              true,
		Push:                  true,
		Analytics:             true,
		AnalyticsOutput:       "/tmp/analytics.yaml",
	}, flagValues{retry: true, preview: true, assumeYes: true, debug: true})

	require.Equal(testInstance, "https://example.com/acme/base.git", sessionConfig.BaseRepositoryURL)
	require.Equal(testInstance, "https://example.com/acme/widgets.git", sessionConfig.IncomingRepositoryURL)
	require.Equal(testInstance, "widgets", sessionConfig.Subdirectory)
	require.Equal(testInstance, "develop", sessionConfig.IncomingBranch)
	require.Equal(testInstance, "main", sessionConfig.BaseBranch)
	require.True(testInstance, sessionConfig.Smart)
	require.True(testInstance, sessionConfig.ShowDiff)
	require.True(testInstance, sessionConfig.Push)
	require.True(testInstance, sessionConfig.Analytics)
	require.Equal(testInstance, "/tmp/analytics.yaml", sessionConfig.AnalyticsOutputPath)
	require.True(testInstance, sessionConfig.Retry)
	require.True(testInstance, sessionConfig.Preview)
	require.True(testInstance, sessionConfig.AssumeYes)
	require.True(testInstance, sessionConfig.Verbose)
}

func TestDefaultConfigurationDocument(testInstance *testing.T) {
	content, configurationType := defaultConfiguration()
	require.Equal(testInstance, configurationTypeConstant, configurationType)

	content[0] = '#'
	pristineContent, _ := defaultConfiguration()
	require.NotEqual(testInstance, content[0], pristineContent[0])

	document := struct {
		Common map[string]any `yaml:"common"`
		Merge  map[string]any `yaml:"merge"`
	}{}
	require.NoError(testInstance, yaml.Unmarshal(pristineContent, &document))
	require.Equal(testInstance, "warn", document.Common["log_level"])
	require.Equal(testInstance, "console", document.Common["log_format"])
	require.Equal(testInstance, string(merge.ConflictPolicyNone), document.Merge["conflict_policy"])
	require.Contains(testInstance, document.Merge, "base_repository_url")
	require.Contains(testInstance, document.Merge, "incoming_repository_url")
}
