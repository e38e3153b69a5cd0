// Package reaper tracks every spawned child process so that none outlives the
// program. Each registered process receives a shutdown task on the shared
// shutdown.Coordinator. A single background goroutine polls the registered
// processes and cancels the task of any process that exited on its own; tasks
// still pending when the program shuts down terminate their process gracefully,
// escalate to a forced kill after a grace period, and optionally clean up the
// descendants that existed when the task started.
//
// Descendants spawned after that snapshot are not tracked. The parent process
// gets the first chance to stop its own children before they are signalled.
package reaper
