// Package shellcontext models where a command will run: the shell dialect reading
// the command line, the program path convention of the host, and whether the
// command runs inside a container, inside a batch-job scheduler allocation, or
// needs an environment-module load step first.
//
// Every ExecutionContext is immutable. Transitions return a new value and leave
// the receiver untouched. Facts that have not been established are Unknown, and
// accessors that require them fail with ErrValueUnknown instead of guessing.
package shellcontext
