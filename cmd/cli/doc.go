// Package cli constructs the procshell command-line interface, wiring the Cobra
// command hierarchy, configuration loader, structured logging and the process
// registry that stops launched commands when the program exits.
package cli
