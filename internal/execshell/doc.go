// Package execshell runs external programs and reports what they did.
//
// ProcessExecutor is the engine: it starts a process through a reaper.Registry,
// feeds optional standard input, drains standard output and standard error
// concurrently so neither pipe can fill up and stall the child, and assembles an
// ExecutionResult. Returner and Streamer are the facade: immutable builders that
// announce commands, apply a ShellVerbosity, and turn unhandled non-zero exits
// into CommandFailedError values carrying a full ErrorReport.
package execshell
