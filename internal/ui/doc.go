// Package ui renders command lifecycle events for people watching a terminal.
//
// Structured telemetry stays with the component loggers; the console logger here
// only prints the short announcements a shell user expects to see.
package ui
