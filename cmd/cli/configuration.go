package cli

import (
	"bytes"
	_ "embed"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/repomerge/internal/merge"
	"github.com/temirov/repomerge/internal/session"
)

const (
	mergeConfigurationKeyConstant                 = "merge"
	baseRepositoryConfigurationKeyConstant        = mergeConfigurationKeyConstant + ".base_repository_url"
	incomingRepositoryConfigurationKeyConstant    = mergeConfigurationKeyConstant + ".incoming_repository_url"
	baseRepositoryEnvironmentVariableConstant     = "GITMERGE_BASE"
	incomingRepositoryEnvironmentVariableConstant = "GITMERGE_MERGE"
)

//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// defaultConfiguration hands the loader its own copy of the embedded YAML defaults.
func defaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationDocument), configurationTypeConstant
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common CommonConfiguration `mapstructure:"common"`
	Merge  MergeConfiguration  `mapstructure:"merge"`
}

// CommonConfiguration stores logging configuration.
type CommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// MergeConfiguration stores the merge session settings that may come from files or the environment.
type MergeConfiguration struct {
	BaseRepositoryURL     string               `mapstructure:"base_repository_url"`
	IncomingRepositoryURL string               `mapstructure:"incoming_repository_url"`
	Subdirectory          string               `mapstructure:"subdirectory"`
	IncomingBranch        string               `mapstructure:"incoming_branch"`
	BaseBranch            string               `mapstructure:"base_branch"`
	ConflictPolicy        merge.ConflictPolicy `mapstructure:"conflict_policy"`
	Workspace             string               `mapstructure:"workspace"`
	Smart                 bool                 `mapstructure:"smart"`
	ShowDiff              bool                 `mapstructure:"show_diff"`
	Push                  bool                 `mapstructure:"push"`
	Analytics             bool                 `mapstructure:"analytics"`
	AnalyticsOutput       string               `mapstructure:"analytics_output"`
}

// environmentAliases binds the repository URL keys to their unprefixed environment variables.
func environmentAliases() map[string][]string {
	return map[string][]string{
		baseRepositoryConfigurationKeyConstant:     {baseRepositoryEnvironmentVariableConstant},
		incomingRepositoryConfigurationKeyConstant: {incomingRepositoryEnvironmentVariableConstant},
	}
}

// conflictPolicyDecodeHook parses conflict_policy values into merge.ConflictPolicy.
func conflictPolicyDecodeHook() mapstructure.DecodeHookFuncType {
	conflictPolicyType := reflect.TypeOf(merge.ConflictPolicyNone)
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != conflictPolicyType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		return merge.ParseConflictPolicy(reflect.ValueOf(data).String())
	}
}

// sessionConfiguration converts the merged configuration and flag values into a session configuration.
func sessionConfiguration(configuration MergeConfiguration, flags flagValues) session.Config {
	return session.Config{
		BaseRepositoryURL:     configuration.BaseRepositoryURL,
		IncomingRepositoryURL: configuration.IncomingRepositoryURL,
		Subdirectory:          configuration.Subdirectory,
		IncomingBranch:        configuration.IncomingBranch,
		BaseBranch:            configuration.BaseBranch,
		FavorBase:             flags.favorBase || (!flags.favorIncoming && configuration.ConflictPolicy == merge.ConflictPolicyFavorBase),
		FavorIncoming:         flags.favorIncoming || (!flags.favorBase && configuration.ConflictPolicy == merge.ConflictPolicyFavorIncoming),
		Retry:                 flags.retry,
		Preview:               flags.preview,
		ShowDiff:              configuration.ShowDiff,
		Smart:                 configuration.Smart,
		AssumeYes:             flags.assumeYes,
		Push:                  configuration.Push,
		Verbose:               flags.verbose || flags.debug,
		Analytics:             configuration.Analytics,
		AnalyticsOutputPath:   configuration.AnalyticsOutput,
	}
}
