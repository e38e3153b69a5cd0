// Package flags binds the choice, tristate and environment flags shared by the
// procshell commands.
package flags
