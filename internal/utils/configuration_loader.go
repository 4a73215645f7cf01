package utils

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	configurationKeyDelimiterConstant               = "."
	environmentKeyDelimiterConstant                 = "_"
	listSeparatorConstant                           = ","
	configurationReadErrorTemplateConstant          = "failed to read configuration: %w"
	configurationUnmarshalErrorTemplateConstant     = "failed to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "failed to merge embedded configuration: %w"
	environmentBindingErrorTemplateConstant         = "failed to bind environment variables for %s: %w"
)

// ConfigurationLoader layers embedded defaults, a configuration file and environment variables through Viper.
// Precedence from lowest: explicit defaults, embedded document, configuration file, environment.
type ConfigurationLoader struct {
	configurationName     string
	configurationType     string
	environmentPrefix     string
	searchPaths           []string
	embeddedDocument      []byte
	embeddedDocumentType  string
	environmentAliases    map[string][]string
	additionalDecodeHooks []mapstructure.DecodeHookFunc
}

// LoadedConfiguration reports which configuration file, if any, contributed values.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader that looks for configurationName in searchPaths and reads environmentPrefix variables.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       slices.Clone(searchPaths),
	}
}

// SetEmbeddedConfiguration replaces the document merged underneath every other layer.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(document []byte, documentType string) {
	if loader == nil {
		return
	}
	loader.embeddedDocumentType = strings.TrimSpace(documentType)
	loader.embeddedDocument = nil
	if len(document) > 0 {
		loader.embeddedDocument = bytes.Clone(document)
	}
}

// SetEnvironmentAliases binds configuration keys to additional unprefixed environment variable names.
func (loader *ConfigurationLoader) SetEnvironmentAliases(aliases map[string][]string) {
	if loader == nil {
		return
	}
	loader.environmentAliases = make(map[string][]string, len(aliases))
	for configurationKey, variableNames := range aliases {
		loader.environmentAliases[configurationKey] = slices.Clone(variableNames)
	}
}

// AddDecodeHooks registers mapstructure hooks applied after the duration and list hooks.
func (loader *ConfigurationLoader) AddDecodeHooks(hooks ...mapstructure.DecodeHookFunc) {
	if loader == nil {
		return
	}
	loader.additionalDecodeHooks = append(loader.additionalDecodeHooks, hooks...)
}

// LoadConfiguration decodes every layer into targetConfiguration. An explicit configurationFilePath must exist;
// a missing file in the search paths is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()

	if mergeError := loader.mergeEmbeddedDocument(viperInstance); mergeError != nil {
		return LoadedConfiguration{}, mergeError
	}
	if bindError := loader.bindEnvironment(viperInstance); bindError != nil {
		return LoadedConfiguration{}, bindError
	}
	for _, defaultKey := range slices.Sorted(maps.Keys(defaultValues)) {
		viperInstance.SetDefault(defaultKey, defaultValues[defaultKey])
	}
	if readError := loader.mergeConfigurationFile(viperInstance, configurationFilePath); readError != nil {
		return LoadedConfiguration{}, readError
	}

	decodeOption := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(loader.decodeHooks()...))
	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeOption); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{ConfigFileUsed: viperInstance.ConfigFileUsed()}, nil
}

func (loader *ConfigurationLoader) mergeEmbeddedDocument(viperInstance *viper.Viper) error {
	if len(loader.embeddedDocument) == 0 {
		return nil
	}
	documentType := loader.embeddedDocumentType
	if len(documentType) == 0 {
		documentType = loader.configurationType
	}
	viperInstance.SetConfigType(documentType)
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedDocument)); mergeError != nil {
		return fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
	}
	return nil
}

func (loader *ConfigurationLoader) bindEnvironment(viperInstance *viper.Viper) error {
	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(configurationKeyDelimiterConstant, environmentKeyDelimiterConstant))
	viperInstance.AutomaticEnv()

	for _, configurationKey := range slices.Sorted(maps.Keys(loader.environmentAliases)) {
		// BindEnv keeps the prefixed name first so it wins over an alias.
		bindArguments := append([]string{configurationKey}, loader.environmentAliases[configurationKey]...)
		if bindError := viperInstance.BindEnv(bindArguments...); bindError != nil {
			return fmt.Errorf(environmentBindingErrorTemplateConstant, configurationKey, bindError)
		}
	}
	return nil
}

func (loader *ConfigurationLoader) mergeConfigurationFile(viperInstance *viper.Viper, configurationFilePath string) error {
	viperInstance.SetConfigName(loader.configurationName)
	viperInstance.SetConfigType(loader.configurationType)
	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}
	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	readError := viperInstance.MergeInConfig()
	var notFoundError viper.ConfigFileNotFoundError
	if readError == nil || errors.As(readError, &notFoundError) {
		return nil
	}
	return fmt.Errorf(configurationReadErrorTemplateConstant, readError)
}

func (loader *ConfigurationLoader) decodeHooks() []mapstructure.DecodeHookFunc {
	return append([]mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(listSeparatorConstant),
	}, loader.additionalDecodeHooks...)
}
