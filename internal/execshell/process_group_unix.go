//go:build !windows

package execshell

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup makes the child lead a new process group so its whole tree
// can be signalled at once.
func isolateProcessGroup(executable *exec.Cmd) {
	executable.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
