//go:build windows

package execshell

import "os/exec"

func isolateProcessGroup(executable *exec.Cmd) {}
