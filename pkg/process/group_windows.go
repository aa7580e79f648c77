//go:build windows

package process

import (
	"os"
	"os/exec"
)

// SetProcessGroup is a no-op on Windows.
func SetProcessGroup(cmd *exec.Cmd) {}

// Terminate kills the process; Windows has no graceful equivalent of SIGTERM.
func Terminate(pid int) error {
	return Kill(pid)
}

// Kill forcibly stops the process.
func Kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	return p.Kill()
}

// ExitStatus returns the exit code of a finished process.
func ExitStatus(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	return state.ExitCode()
}
