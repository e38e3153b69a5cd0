// Package spawner starts long-lived processes and hands their handles back to the
// caller instead of waiting for them. An optional timeout watchdog kills a
// process that outlives it.
package spawner
