package errors

import (
	"fmt"
	"os/exec"
	"time"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *LeaderError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *LeaderError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// EmptyKey describes a configuration node whose key is empty.
func EmptyKey(kind, prefix string) *LeaderError {
	return New(ErrCodeEmptyKey, fmt.Sprintf("%s with empty key under prefix %q skipped", kind, prefix)).
		WithDetail("kind", kind).
		WithDetail("prefix", prefix)
}

// DuplicateSequence describes a sequence that was overwritten by a later entry.
func DuplicateSequence(sequence string) *LeaderError {
	return New(ErrCodeDuplicateSequence, fmt.Sprintf("sequence %q defined more than once; last definition wins", sequence)).
		WithDetail("sequence", sequence)
}

// AppNotFound creates an application not found error
func AppNotFound(path string) *LeaderError {
	return New(ErrCodeAppNotFound, fmt.Sprintf("application not found: %s", path)).
		WithDetail("path", path)
}

// NotAnApplication reports a path that exists but cannot be launched as an application.
func NotAnApplication(path string) *LeaderError {
	return New(ErrCodeNotAnApplication, fmt.Sprintf("not an application: %s", path)).
		WithDetail("path", path)
}

// LaunchFailed wraps an error returned while launching an application.
func LaunchFailed(path string, err error) *LeaderError {
	return Wrap(err, ErrCodeLaunchFailed, fmt.Sprintf("failed to launch %s", path)).
		WithDetail("path", path)
}

// InvalidURL creates an invalid URL error
func InvalidURL(raw string) *LeaderError {
	return New(ErrCodeInvalidURL, fmt.Sprintf("invalid URL: %q", raw)).
		WithDetail("url", raw)
}

// OpenFailed wraps an error returned by the system opener.
func OpenFailed(target string, err error) *LeaderError {
	return Wrap(err, ErrCodeOpenFailed, fmt.Sprintf("failed to open %s", target)).
		WithDetail("target", target)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *LeaderError {
	leaderErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		leaderErr = leaderErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return leaderErr
}

// CommandExited reports a command that finished with a non-tolerated exit code.
func CommandExited(cmd string, exitCode int, output string) *LeaderError {
	return New(ErrCodeCommandFailed, fmt.Sprintf("command exited with status %d: %s", exitCode, cmd)).
		WithDetail("command", cmd).
		WithDetail("exitCode", exitCode).
		WithDetail("output", output)
}

// CommandTimeout creates a command timeout error
func CommandTimeout(cmd string, timeout time.Duration) *LeaderError {
	return New(ErrCodeCommandTimeout,
		fmt.Sprintf("command did not finish within %s and was terminated: %s", timeout, cmd)).
		WithDetail("command", cmd).
		WithDetail("timeout", timeout.String())
}

// CommandNotFound reports a missing executable, usually the configured shell.
func CommandNotFound(name string) *LeaderError {
	return New(ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", name)).
		WithDetail("command", name)
}

// DaemonRunning reports an attempt to start a second daemon.
func DaemonRunning(pid int) *LeaderError {
	return New(ErrCodeDaemonRunning, fmt.Sprintf("leader daemon is already running (pid %d)", pid)).
		WithDetail("pid", pid)
}

// InvalidInput reports a malformed request or argument.
func InvalidInput(reason string) *LeaderError {
	return New(ErrCodeInvalidInput, reason)
}

// FolderNotFound creates a folder not found error
func FolderNotFound(path string) *LeaderError {
	return New(ErrCodeFolderNotFound, fmt.Sprintf("folder not found: %s", path)).
		WithDetail("path", path)
}

// NotADirectory reports a folder action whose target is a regular file.
func NotADirectory(path string) *LeaderError {
	return New(ErrCodeNotADirectory, fmt.Sprintf("not a directory: %s", path)).
		WithDetail("path", path)
}

// DaemonNotRunning creates an error for CLI commands that need the daemon
func DaemonNotRunning(socket string) *LeaderError {
	return New(ErrCodeDaemonNotRunning, "leader daemon is not running").
		WithDetail("socket", socket)
}

// UserMessage returns the text shown to the user in a failure notification.
func UserMessage(err error) string {
	leaderErr, ok := As(err)
	if !ok {
		return err.Error()
	}
	msg := leaderErr.Message
	if out, ok := leaderErr.Details["output"].(string); ok && out != "" {
		msg += "\n" + out
	} else if leaderErr.Cause != nil {
		msg += ": " + leaderErr.Cause.Error()
	}
	return msg
}
