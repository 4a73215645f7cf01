package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	sessionIdentifierContextKeyConstant     = commandContextKey("sessionIdentifier")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, configurationFilePathContextKeyConstant)
}

// WithSessionIdentifier attaches the merge session identifier to the provided context.
func (accessor CommandContextAccessor) WithSessionIdentifier(parentContext context.Context, sessionIdentifier string) context.Context {
	return accessor.withValue(parentContext, sessionIdentifierContextKeyConstant, sessionIdentifier)
}

// SessionIdentifier extracts the merge session identifier from the provided context.
func (accessor CommandContextAccessor) SessionIdentifier(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, sessionIdentifierContextKeyConstant)
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func (accessor CommandContextAccessor) value(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, storedValueAvailable := executionContext.Value(key).(string)
	if !storedValueAvailable {
		return "", false
	}
	return storedValue, true
}
