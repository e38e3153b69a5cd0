package execshell

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/temirov/procshell/internal/reaper"
	"github.com/temirov/procshell/internal/shellcontext"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
)

// ReapingContext pairs the description of the execution environment with the
// registry that owns every process started in it.
type ReapingContext struct {
	ExecutionContext shellcontext.ExecutionContext
	Registry         *reaper.Registry
}

// StartOptions selects the pipes StartProcess creates.
type StartOptions struct {
	WithStandardInput bool
	// DestroyDescendants makes the shutdown task also stop the process's descendants
	// and starts the process in its own process group.
	DestroyDescendants bool
}

type environmentAssignment struct {
	key   string
	value string
}

func sortedEnvironmentAssignments(environmentVariables map[string]string) []environmentAssignment {
	assignments := make([]environmentAssignment, 0, len(environmentVariables))
	for key, value := range environmentVariables {
		assignments = append(assignments, environmentAssignment{key: key, value: value})
	}
	sort.Slice(assignments, func(left int, right int) bool {
		return assignments[left].key < assignments[right].key
	})
	return assignments
}

// mergeEnvironment overlays the configured variables on the inherited environment.
// Later entries win in os/exec, so overrides are appended.
func mergeEnvironment(environmentVariables map[string]string) []string {
	if len(environmentVariables) == 0 {
		return nil
	}
	mergedEnvironment := append([]string{}, os.Environ()...)
	for _, assignment := range sortedEnvironmentAssignments(environmentVariables) {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, assignment.key, environmentAssignmentSeparatorConstant, assignment.value))
	}
	return mergedEnvironment
}

// StartProcess launches details with piped standard output and standard error and
// registers the process with registry. A launch failure is a CommandExecutionError
// carrying a reproduction line.
func StartProcess(registry *reaper.Registry, command ShellCommand, options StartOptions) (*reaper.ProcessHandle, error) {
	if registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	details := command.Details
	if len(details.Arguments) == 0 {
		return nil, CommandExecutionError{Command: command, Cause: ErrEmptyCommand}
	}

	executable := exec.Command(details.Arguments[0], details.Arguments[1:]...)
	if len(details.WorkingDirectory) > 0 {
		executable.Dir = details.WorkingDirectory
	}
	executable.Env = mergeEnvironment(details.EnvironmentVariables)
	if options.DestroyDescendants {
		isolateProcessGroup(executable)
	}

	spawnedProcess := reaper.SpawnedProcess{Command: executable}
	var pipeError error
	if options.WithStandardInput {
		if spawnedProcess.StandardInput, pipeError = executable.StdinPipe(); pipeError != nil {
			return nil, newStartFailure(command, pipeError)
		}
	}
	if spawnedProcess.StandardOutput, pipeError = executable.StdoutPipe(); pipeError != nil {
		return nil, newStartFailure(command, pipeError)
	}
	if spawnedProcess.StandardError, pipeError = executable.StderrPipe(); pipeError != nil {
		return nil, newStartFailure(command, pipeError)
	}

	if startError := executable.Start(); startError != nil {
		return nil, newStartFailure(command, startError)
	}

	handle, registerError := registry.Register(spawnedProcess, options.DestroyDescendants)
	if registerError != nil {
		_ = executable.Process.Kill()
		_ = executable.Wait()
		return nil, newStartFailure(command, registerError)
	}
	return handle, nil
}

func newStartFailure(command ShellCommand, cause error) CommandExecutionError {
	return CommandExecutionError{
		Command:             command,
		ReproductionCommand: CommandMessageFormatter{}.BuildReproductionCommand(command.Details),
		Cause:               cause,
	}
}
