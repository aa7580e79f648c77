package command

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"sync"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/process"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultShell runs command actions.
	DefaultShell = "/bin/sh"

	// DefaultCommandTimeout bounds a command action's wall-clock time.
	DefaultCommandTimeout = 60 * time.Second

	// DefaultGrace is how long a terminated group has before SIGKILL.
	DefaultGrace = 2 * time.Second

	// MaxOutput caps the captured output of a command.
	MaxOutput = 64 * 1024
)

// Result describes a finished command.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
	TimedOut bool
}

// Runner runs shell scripts in their own process group with a timeout.
type Runner struct {
	shell    string
	grace    time.Duration
	executor Executor
	logger   *logrus.Entry

	// OnTerminate is called when a running group is forcibly terminated.
	OnTerminate func(pid int)
}

// NewRunner returns a Runner using shell, or DefaultShell when empty.
func NewRunner(shell string) *Runner {
	if shell == "" {
		shell = DefaultShell
	}
	return &Runner{
		shell:    shell,
		grace:    DefaultGrace,
		executor: &RealExecutor{},
		logger:   logging.NewLogger("command"),
	}
}

// WithExecutor replaces the Executor used to create processes.
func (r *Runner) WithExecutor(e Executor) *Runner {
	r.executor = e
	return r
}

// WithGrace sets the delay between SIGTERM and SIGKILL.
func (r *Runner) WithGrace(d time.Duration) *Runner {
	r.grace = d
	return r
}

// Shell returns the shell scripts are run with.
func (r *Runner) Shell() string {
	return r.shell
}

// Run executes script with `shell -c`. It returns a nil error whenever the
// process ran to completion, whatever its exit code; callers decide which
// codes are failures. A process killed by a signal gets 128 plus the signal
// number as its exit code. A timeout terminates the process group and returns
// COMMAND_TIMEOUT; cancelling ctx terminates it and returns COMMAND_FAILED.
func (r *Runner) Run(ctx context.Context, script string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if _, err := r.executor.LookPath(r.shell); err != nil {
		return Result{}, errors.CommandNotFound(r.shell)
	}

	out := &cappedBuffer{limit: MaxOutput}
	cmd := r.executor.Command(r.shell, "-c", script)
	cmd.Stdout = out
	cmd.Stderr = out
	// Background children may hold the pipes open after the shell exits.
	cmd.WaitDelay = r.grace
	process.SetProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, errors.CommandFailed(script, err)
	}
	pid := cmd.Process.Pid
	log := r.logger.WithFields(logrus.Fields{"pid": pid, "shell": r.shell})
	log.WithField("timeout", timeout).Debug("Started command")

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var once sync.Once
	terminate := func(reason string) {
		once.Do(func() {
			log.WithField("reason", reason).Warn("Terminating command process group")
			if r.OnTerminate != nil {
				r.OnTerminate(pid)
			}
			if err := process.Terminate(pid); err != nil {
				log.WithError(err).Debug("SIGTERM failed")
			}
		})
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-waitCh:
	case <-timer.C:
		timedOut = true
		terminate("timeout")
		waitErr = r.awaitExit(pid, waitCh, log)
	case <-ctx.Done():
		terminate("cancelled")
		waitErr = r.awaitExit(pid, waitCh, log)
	}

	res := Result{
		ExitCode: -1,
		Output:   out.String(),
		Duration: time.Since(start),
		TimedOut: timedOut,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = process.ExitStatus(cmd.ProcessState)
	}
	log.WithFields(logrus.Fields{"exit_code": res.ExitCode, "duration": res.Duration}).Debug("Command finished")

	switch {
	case timedOut:
		return res, errors.CommandTimeout(script, timeout)
	case ctx.Err() != nil:
		return res, errors.CommandFailed(script, ctx.Err())
	case waitErr != nil:
		var exitErr *exec.ExitError
		if stderrors.As(waitErr, &exitErr) {
			return res, nil
		}
		return res, errors.CommandFailed(script, waitErr)
	}
	return res, nil
}

// awaitExit waits for a terminated group, escalating to SIGKILL after the grace period.
func (r *Runner) awaitExit(pid int, waitCh <-chan error, log *logrus.Entry) error {
	grace := time.NewTimer(r.grace)
	defer grace.Stop()

	select {
	case err := <-waitCh:
		return err
	case <-grace.C:
		log.Warn("Command ignored SIGTERM, killing process group")
		if err := process.Kill(pid); err != nil {
			log.WithError(err).Debug("SIGKILL failed")
		}
		return <-waitCh
	}
}

// cappedBuffer keeps the first limit bytes written to it.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.truncated {
		return b.buf.String() + "\n[output truncated]"
	}
	return b.buf.String()
}
