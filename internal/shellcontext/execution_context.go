package shellcontext

import (
	"github.com/temirov/procshell/internal/escape"
)

const (
	inContainerFieldNameConstant    = "in_container"
	inJobSchedulerFieldNameConstant = "in_job_scheduler"
	needsModulesFieldNameConstant   = "needs_modules"
	pathConventionFieldNameConstant = "path_convention"
	linuxOperatingSystemConstant    = "linux"
	darwinOperatingSystemConstant   = "darwin"
	windowsOperatingSystemConstant  = "windows"
)

// ExecutionContext describes the environment a command line is prepared for.
type ExecutionContext struct {
	dialect        Dialect
	pathConvention PathConvention
	inContainer    Tristate
	inJobScheduler Tristate
	needsModules   Tristate
}

// Description is the serializable view of an ExecutionContext.
type Description struct {
	Dialect        Dialect        `yaml:"dialect" json:"dialect"`
	PathConvention PathConvention `yaml:"path_convention" json:"path_convention"`
	InContainer    Tristate       `yaml:"in_container" json:"in_container"`
	InJobScheduler Tristate       `yaml:"in_job_scheduler" json:"in_job_scheduler"`
	NeedsModules   Tristate       `yaml:"needs_modules" json:"needs_modules"`
	EscapeContext  string         `yaml:"escape_context" json:"escape_context"`
	ForceFlag      string         `yaml:"force_flag" json:"force_flag"`
}

// NewExecutionContext builds a context from explicit facts. Unrecognized values are treated as unknown.
func NewExecutionContext(dialect Dialect, pathConvention PathConvention, inContainer Tristate, inJobScheduler Tristate, needsModules Tristate) ExecutionContext {
	return ExecutionContext{
		dialect:        dialect,
		pathConvention: pathConvention.normalized(),
		inContainer:    inContainer.normalized(),
		inJobScheduler: inJobScheduler.normalized(),
		needsModules:   needsModules.normalized(),
	}
}

// UnknownExecutionContext knows only the dialect.
func UnknownExecutionContext(dialect Dialect) ExecutionContext {
	return NewExecutionContext(dialect, PathConventionUnknown, TristateUnknown, TristateUnknown, TristateUnknown)
}

// DefaultLinuxExecutionContext describes a plain Linux host invoking programs directly.
func DefaultLinuxExecutionContext() ExecutionContext {
	return NewExecutionContext(DialectUnixDirectCommandsOnly, PathConventionLinuxDirect, TristateFalse, TristateFalse, TristateFalse)
}

// DefaultMacExecutionContext describes a macOS host with Homebrew-installed programs.
func DefaultMacExecutionContext() ExecutionContext {
	return NewExecutionContext(DialectUnixDirectCommandsOnly, PathConventionMacHomebrew, TristateFalse, TristateFalse, TristateFalse)
}

// DefaultWindowsExecutionContext describes a Windows host running PowerShell.
func DefaultWindowsExecutionContext() ExecutionContext {
	return NewExecutionContext(DialectPowerShell, PathConventionWindows, TristateFalse, TristateFalse, TristateFalse)
}

// ContextForOperatingSystem picks the preset for a GOOS value and falls back to an
// unknown direct-command context elsewhere.
func ContextForOperatingSystem(operatingSystem string) ExecutionContext {
	switch operatingSystem {
	case linuxOperatingSystemConstant:
		return DefaultLinuxExecutionContext()
	case darwinOperatingSystemConstant:
		return DefaultMacExecutionContext()
	case windowsOperatingSystemConstant:
		return DefaultWindowsExecutionContext()
	default:
		return UnknownExecutionContext(DialectUnixDirectCommandsOnly)
	}
}

// Dialect returns the shell dialect.
func (executionContext ExecutionContext) Dialect() Dialect {
	return executionContext.dialect
}

// PathConvention returns the possibly unknown path convention.
func (executionContext ExecutionContext) PathConvention() PathConvention {
	return executionContext.pathConvention.normalized()
}

// InContainer returns the possibly unknown container flag.
func (executionContext ExecutionContext) InContainer() Tristate {
	return executionContext.inContainer.normalized()
}

// InJobScheduler returns the possibly unknown job scheduler flag.
func (executionContext ExecutionContext) InJobScheduler() Tristate {
	return executionContext.inJobScheduler.normalized()
}

// NeedsModules returns the possibly unknown module load flag.
func (executionContext ExecutionContext) NeedsModules() Tristate {
	return executionContext.needsModules.normalized()
}

// EnterContainer describes the same host from inside a container sandbox, where
// environment modules are never loaded.
func (executionContext ExecutionContext) EnterContainer() ExecutionContext {
	executionContext.inContainer = TristateTrue
	executionContext.needsModules = TristateFalse
	return executionContext
}

// EnterJobScheduler describes the host from inside a batch-job allocation. Job
// nodes always use the Linux direct path convention.
func (executionContext ExecutionContext) EnterJobScheduler() ExecutionContext {
	executionContext.inJobScheduler = TristateTrue
	executionContext.pathConvention = PathConventionLinuxDirect
	return executionContext
}

// SwitchToDialect returns a copy interpreted by dialect. Moving between the unix
// family and PowerShell is rejected.
func (executionContext ExecutionContext) SwitchToDialect(dialect Dialect) (ExecutionContext, error) {
	if executionContext.dialect.isUnixFamily() != dialect.isUnixFamily() {
		return executionContext, newDialectSwitchError(executionContext.dialect, dialect)
	}
	executionContext.dialect = dialect
	return executionContext, nil
}

// RequireInContainer fails with ErrValueUnknown when the container flag is unknown.
func (executionContext ExecutionContext) RequireInContainer() (bool, error) {
	return requireTristate(executionContext.inContainer, inContainerFieldNameConstant)
}

// RequireInJobScheduler fails with ErrValueUnknown when the job scheduler flag is unknown.
func (executionContext ExecutionContext) RequireInJobScheduler() (bool, error) {
	return requireTristate(executionContext.inJobScheduler, inJobSchedulerFieldNameConstant)
}

// RequireNeedsModules fails with ErrValueUnknown when the module flag is unknown.
func (executionContext ExecutionContext) RequireNeedsModules() (bool, error) {
	return requireTristate(executionContext.needsModules, needsModulesFieldNameConstant)
}

// RequirePathConvention fails with ErrValueUnknown when the path convention is unknown.
func (executionContext ExecutionContext) RequirePathConvention() (PathConvention, error) {
	if !executionContext.pathConvention.Known() {
		return PathConventionUnknown, ValueUnknownError{FieldName: pathConventionFieldNameConstant}
	}
	return executionContext.pathConvention, nil
}

// IsFullyKnown reports whether every optional fact is established.
func (executionContext ExecutionContext) IsFullyKnown() bool {
	return executionContext.pathConvention.Known() &&
		executionContext.inContainer.Known() &&
		executionContext.inJobScheduler.Known() &&
		executionContext.needsModules.Known()
}

// EscapeContext returns the escape context of the dialect.
func (executionContext ExecutionContext) EscapeContext() escape.Context {
	return executionContext.dialect.EscapeContext()
}

// Describe renders the context for display.
func (executionContext ExecutionContext) Describe() Description {
	return Description{
		Dialect:        executionContext.dialect,
		PathConvention: executionContext.PathConvention(),
		InContainer:    executionContext.InContainer(),
		InJobScheduler: executionContext.InJobScheduler(),
		NeedsModules:   executionContext.NeedsModules(),
		EscapeContext:  executionContext.EscapeContext().Name(),
		ForceFlag:      executionContext.dialect.ForceFlag(),
	}
}

func requireTristate(state Tristate, fieldName string) (bool, error) {
	value, known := state.Value()
	if !known {
		return false, ValueUnknownError{FieldName: fieldName}
	}
	return value, nil
}
