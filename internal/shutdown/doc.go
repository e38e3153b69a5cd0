// Package shutdown coordinates work that must run exactly once when the program
// begins to exit. Components schedule a Task with DuringShutdown and may cancel it
// or run it early; Shutdown runs every task still pending.
package shutdown
