// Package process provides the run, spawn and kill commands, which launch and
// signal operating system processes through the reaping shell layer.
package process
