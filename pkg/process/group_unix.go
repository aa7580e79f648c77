//go:build !windows

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// SetProcessGroup makes cmd the leader of a new process group so the
// whole tree it spawns can be signalled at once.
func SetProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// SignalGroup sends sig to the process group led by pid. A group that has
// already exited is not an error.
func SignalGroup(pid int, sig syscall.Signal) error {
	if pid <= 0 {
		return nil
	}
	err := syscall.Kill(-pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// Terminate asks the group led by pid to stop.
func Terminate(pid int) error {
	return SignalGroup(pid, syscall.SIGTERM)
}

// Kill forcibly stops the group led by pid.
func Kill(pid int) error {
	return SignalGroup(pid, syscall.SIGKILL)
}

// ExitStatus returns the exit code of a finished process. A process killed
// by a signal reports 128 plus the signal number, as shells do.
func ExitStatus(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
