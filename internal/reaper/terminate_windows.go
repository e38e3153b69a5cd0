//go:build windows

package reaper

import (
	"os"
	"os/exec"
)

// Windows has no catchable termination signal for arbitrary processes.
func requestGracefulTermination(target *os.Process) error {
	return target.Kill()
}

func killProcessGroup(command *exec.Cmd) (bool, error) {
	return false, nil
}
