package shellinfo_test

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/procshell/cmd/cli/shellinfo"
	"github.com/temirov/procshell/internal/shellcontext"
)

func describeContext(testInstance *testing.T, configuration shellinfo.ContextConfiguration, arguments ...string) map[string]string {
	testInstance.Helper()
	builder := shellinfo.ContextCommandBuilder{
		ConfigurationProvider: func() shellinfo.ContextConfiguration { return configuration },
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetArgs(arguments)
	require.NoError(testInstance, command.Execute())

	description := map[string]string{}
	require.NoError(testInstance, yaml.Unmarshal(outputBuffer.Bytes(), &description))
	return description
}

func TestContextCommandDescribesConfiguredContext(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration shellinfo.ContextConfiguration
		arguments     []string
		expected      map[string]string
	}{
		{
			name:          "linux_defaults",
			configuration: shellinfo.ContextConfiguration{Platform: "linux"},
			expected: map[string]string{
				"dialect":          "unix-direct",
				"path_convention":  "linux-direct",
				"in_container":     "false",
				"in_job_scheduler": "false",
				"needs_modules":    "false",
				"escape_context":   "none",
			},
		},
		{
			name:          "configured_dialect",
			configuration: shellinfo.ContextConfiguration{Platform: "mac", Dialect: "zsh"},
			expected: map[string]string{
				"dialect":         "zsh",
				"path_convention": "mac-homebrew",
				"escape_context":  "unix-unquoted",
			},
		},
		{
			name:          "flags_override_configuration",
			configuration: shellinfo.ContextConfiguration{Platform: "linux", Dialect: "bash"},
			arguments:     []string{"--platform", "windows", "--dialect", "powershell"},
			expected: map[string]string{
				"dialect":         "powershell",
				"path_convention": "windows",
				"escape_context":  "windows-powershell",
			},
		},
		{
			name:          "unknown_platform",
			configuration: shellinfo.ContextConfiguration{Platform: "unknown"},
			expected: map[string]string{
				"path_convention": "unknown",
				"in_container":    "unknown",
				"needs_modules":   "unknown",
			},
		},
		{
			name:          "container_disables_modules",
			configuration: shellinfo.ContextConfiguration{Platform: "unknown"},
			arguments:     []string{"--container", "--needs-modules=true"},
			expected: map[string]string{
				"in_container":  "true",
				"needs_modules": "false",
			},
		},
		{
			name:          "job_scheduler_uses_linux_paths",
			configuration: shellinfo.ContextConfiguration{Platform: "mac"},
			arguments:     []string{"--job-scheduler=yes"},
			expected: map[string]string{
				"in_job_scheduler": "true",
				"path_convention":  "linux-direct",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			description := describeContext(testInstance, testCase.configuration, testCase.arguments...)
			for key, expectedValue := range testCase.expected {
				require.Equal(testInstance, expectedValue, description[key], key)
			}
		})
	}
}

func TestResolveExecutionContext(testInstance *testing.T) {
	automaticContext, automaticError := shellinfo.DefaultContextConfiguration().ResolveExecutionContext()
	require.NoError(testInstance, automaticError)
	require.Equal(testInstance, shellcontext.ContextForOperatingSystem(runtime.GOOS), automaticContext)

	_, platformError := shellinfo.ContextConfiguration{Platform: "plan9"}.ResolveExecutionContext()
	require.Error(testInstance, platformError)

	_, dialectError := shellinfo.ContextConfiguration{Platform: "linux", Dialect: "powershell"}.ResolveExecutionContext()
	require.Error(testInstance, dialectError)

	bashContext, bashError := shellinfo.ContextConfiguration{Platform: "linux", Dialect: "BASH"}.ResolveExecutionContext()
	require.NoError(testInstance, bashError)
	require.Equal(testInstance, shellcontext.DialectBash, bashContext.Dialect())
}
