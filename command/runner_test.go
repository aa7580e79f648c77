package command

import (
	"context"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerSuccess(t *testing.T) {
	r := NewRunner("")
	res, err := r.Run(context.Background(), "echo hello; echo oops >&2", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "hello")
	assert.Contains(t, res.Output, "oops")
	assert.False(t, res.TimedOut)
}

func TestRunnerNonZeroExitIsNotAnError(t *testing.T) {
	res, err := NewRunner("").Run(context.Background(), "echo failing; exit 2", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.Equal(t, "failing\n", res.Output)
}

func TestRunnerSignalledExit(t *testing.T) {
	res, err := NewRunner("").Run(context.Background(), "kill -9 $$", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 128+9, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestRunnerTimeoutTerminatesOnce(t *testing.T) {
	var terminations atomic.Int32
	r := NewRunner("").WithGrace(200 * time.Millisecond)
	r.OnTerminate = func(pid int) { terminations.Add(1) }

	start := time.Now()
	res, err := r.Run(context.Background(), "sleep 30", 100*time.Millisecond)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout))
	assert.True(t, res.TimedOut)
	assert.Equal(t, int32(1), terminations.Load())
	assert.Less(t, time.Since(start), 5*time.Second)

	le, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "100ms", le.Details["timeout"])
}

func TestRunnerEscalatesToKill(t *testing.T) {
	var terminations atomic.Int32
	r := NewRunner("").WithGrace(100 * time.Millisecond)
	r.OnTerminate = func(pid int) { terminations.Add(1) }

	start := time.Now()
	res, err := r.Run(context.Background(), "trap '' TERM; while :; do sleep 0.05; done", 100*time.Millisecond)

	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout))
	assert.True(t, res.TimedOut)
	assert.Equal(t, int32(1), terminations.Load(), "SIGKILL escalation is not a second termination request")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunnerKillsBackgroundChildren(t *testing.T) {
	r := NewRunner("").WithGrace(100 * time.Millisecond)
	start := time.Now()
	_, err := r.Run(context.Background(), "sleep 30 & sleep 30", 100*time.Millisecond)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	res, err := NewRunner("").Run(ctx, "sleep 30", time.Minute)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandFailed))
	assert.False(t, res.TimedOut)
}

func TestRunnerMissingShell(t *testing.T) {
	_, err := NewRunner("/nonexistent/shell").Run(context.Background(), "true", time.Second)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandNotFound))
}

type recordingExecutor struct {
	RealExecutor
	names []string
}

func (e *recordingExecutor) Command(name string, args ...string) *exec.Cmd {
	e.names = append(e.names, name+" "+strings.Join(args, " "))
	return e.RealExecutor.Command(name, args...)
}

func TestRunnerUsesExecutor(t *testing.T) {
	rec := &recordingExecutor{}
	_, err := NewRunner("/bin/sh").WithExecutor(rec).Run(context.Background(), "true", time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"/bin/sh -c true"}, rec.names)
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 4}
	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abcd\n[output truncated]", b.String())
}
