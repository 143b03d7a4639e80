// Package process contains helpers for inspecting local processes.
package process

import (
	"os"
	"syscall"
)

// IsAlive checks if a process with the given PID is still running on a
// Unix-like system. Signal 0 probes existence without delivering anything;
// EPERM still means the process exists.
func IsAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = proc.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
