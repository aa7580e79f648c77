package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances and resolves executables. Tests swap
// it to point commands at stub binaries without touching production code.
type Executor interface {
	// Command creates a new exec.Cmd instance for the given command and arguments.
	Command(name string, args ...string) *exec.Cmd

	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd

	// LookPath resolves name the way exec.Command would.
	LookPath(name string) (string, error)
}

// RealExecutor is the production Executor backed by os/exec.
type RealExecutor struct{}

func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
