package utils

import "context"

type invocationValueKey int

const (
	configurationFilePathValueKey invocationValueKey = iota
	invocationIdentifierValueKey
)

// CommandContextAccessor stores per-invocation values in a command's context.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file the invocation loaded.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withInvocationValue(parentContext, configurationFilePathValueKey, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return invocationValue(executionContext, configurationFilePathValueKey)
}

// WithInvocationIdentifier records the identifier that correlates log entries of one invocation.
func (accessor CommandContextAccessor) WithInvocationIdentifier(parentContext context.Context, invocationIdentifier string) context.Context {
	return withInvocationValue(parentContext, invocationIdentifierValueKey, invocationIdentifier)
}

// InvocationIdentifier returns the recorded invocation identifier.
func (accessor CommandContextAccessor) InvocationIdentifier(executionContext context.Context) (string, bool) {
	return invocationValue(executionContext, invocationIdentifierValueKey)
}

func withInvocationValue(parentContext context.Context, key invocationValueKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func invocationValue(executionContext context.Context, key invocationValueKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
