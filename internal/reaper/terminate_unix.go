//go:build !windows

package reaper

import (
	"errors"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

func requestGracefulTermination(target *os.Process) error {
	return target.Signal(unix.SIGTERM)
}

// killProcessGroup kills every member of the group command leads. It reports
// false when command was not started in its own process group.
func killProcessGroup(command *exec.Cmd) (bool, error) {
	if command.SysProcAttr == nil || !command.SysProcAttr.Setpgid {
		return false, nil
	}
	killError := unix.Kill(-command.Process.Pid, unix.SIGKILL)
	if errors.Is(killError, unix.ESRCH) {
		return true, nil
	}
	return true, killError
}
