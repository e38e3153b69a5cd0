package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironmentAssignments(t *testing.T) {
	environment, parseError := ParseEnvironmentAssignments([]string{"A=1", "B=x=y,z", "A=2", "EMPTY="})
	require.NoError(t, parseError)
	require.Equal(t, map[string]string{"A": "2", "B": "x=y,z", "EMPTY": ""}, environment)

	_, parseError = ParseEnvironmentAssignments([]string{"MISSING"})
	require.Error(t, parseError)

	_, parseError = ParseEnvironmentAssignments([]string{"=value"})
	require.Error(t, parseError)
}

func TestAddEnvironmentFlagCollectsRepeatedValues(t *testing.T) {
	command := &cobra.Command{}
	var environment map[string]string
	AddEnvironmentFlag(command.Flags(), &environment, "env", "", "Environment override.")

	require.NoError(t, command.ParseFlags([]string{"--env", "B=2", "--env", "A=1,3"}))
	require.Equal(t, map[string]string{"A": "1,3", "B": "2"}, environment)
	require.Equal(t, "A=1,3,B=2", command.Flags().Lookup("env").Value.String())
}

func TestAddEnvironmentFlagAcceptsShorthand(t *testing.T) {
	command := &cobra.Command{}
	var environment map[string]string
	AddEnvironmentFlag(command.Flags(), &environment, "env", "e", "Environment override.")

	require.NoError(t, command.ParseFlags([]string{"-e", "FIRST=1", "--env", "SECOND=2", "-eTHIRD=3"}))
	require.Equal(t, map[string]string{"FIRST": "1", "SECOND": "2", "THIRD": "3"}, environment)
	require.Equal(t, "e", command.Flags().Lookup("env").Shorthand)
}
