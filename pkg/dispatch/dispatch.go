// Package dispatch runs resolved actions on worker goroutines and reports
// failures to a notifier.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/leader/command"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/action"
	"github.com/grovetools/leader/pkg/notify"
	"github.com/sirupsen/logrus"
)

// Launcher starts the application at path.
type Launcher interface {
	Launch(ctx context.Context, path string) error
}

// URLOpener opens a URL with its default handler.
type URLOpener interface {
	OpenURL(ctx context.Context, raw string) error
}

// CommandRunner runs a shell script with a wall-clock timeout.
type CommandRunner interface {
	Run(ctx context.Context, script string, timeout time.Duration) (command.Result, error)
}

// FolderRevealer shows a folder in the file browser.
type FolderRevealer interface {
	Reveal(ctx context.Context, path string) error
}

// Options wires a Dispatcher to its executors.
type Options struct {
	Launcher       Launcher
	URLOpener      URLOpener
	Runner         CommandRunner
	Revealer       FolderRevealer
	Notifier       notify.Notifier
	CommandTimeout time.Duration
	// NotifySuccess also reports actions that completed without error.
	NotifySuccess bool
	Logger        *logrus.Entry
}

// Record is the outcome of one dispatched action.
type Record struct {
	ID       string            `json:"id"`
	Action   action.Descriptor `json:"action"`
	Started  time.Time         `json:"started"`
	Duration time.Duration     `json:"duration"`
	Code     errors.ErrorCode  `json:"code,omitempty"`
	Error    string            `json:"error,omitempty"`
}

const historySize = 20

// Dispatcher maps descriptors to executors. Dispatch never blocks.
type Dispatcher struct {
	launcher Launcher
	opener   URLOpener
	runner   CommandRunner
	revealer FolderRevealer
	notifier notify.Notifier
	logger   *logrus.Entry

	commandTimeout atomic.Int64
	notifySuccess  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	history []Record
}

// New creates a Dispatcher. Missing executors make the matching kind fail
// with INTERNAL_ERROR rather than panic.
func New(opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("dispatch")
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = command.DefaultCommandTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		launcher: opts.Launcher,
		opener:   opts.URLOpener,
		runner:   opts.Runner,
		revealer: opts.Revealer,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	d.commandTimeout.Store(int64(opts.CommandTimeout))
	d.notifySuccess.Store(opts.NotifySuccess)
	return d
}

// SetCommandTimeout changes the timeout applied to later command actions.
func (d *Dispatcher) SetCommandTimeout(t time.Duration) {
	if t <= 0 {
		t = command.DefaultCommandTimeout
	}
	d.commandTimeout.Store(int64(t))
}

// SetNotifySuccess toggles success notifications.
func (d *Dispatcher) SetNotifySuccess(on bool) {
	d.notifySuccess.Store(on)
}

// Dispatch runs desc on a new goroutine and returns immediately.
func (d *Dispatcher) Dispatch(desc action.Descriptor) {
	if d.ctx.Err() != nil {
		d.logger.WithField("action", desc.String()).Warn("Dispatcher closed, dropping action")
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Execute(d.ctx, desc)
	}()
}

// Execute runs desc synchronously, records the outcome and notifies.
func (d *Dispatcher) Execute(ctx context.Context, desc action.Descriptor) error {
	rec := Record{ID: uuid.NewString(), Action: desc, Started: time.Now()}
	log := d.logger.WithFields(logrus.Fields{"dispatch_id": rec.ID, "kind": desc.Kind})

	err := d.execute(ctx, desc)
	rec.Duration = time.Since(rec.Started)

	if err != nil {
		rec.Code = errors.GetCode(err)
		rec.Error = errors.UserMessage(err)
		log.WithError(err).Warn("Action failed")
		d.notify(failureTitle(desc, err), errors.UserMessage(err))
	} else {
		log.WithField("duration", rec.Duration).Info("Action completed")
		if d.notifySuccess.Load() {
			d.notify("Leader", desc.Title())
		}
	}
	d.record(rec)
	return err
}

func (d *Dispatcher) execute(ctx context.Context, desc action.Descriptor) error {
	switch desc.Kind {
	case action.KindApplication:
		if d.launcher == nil {
			return missingExecutor(desc.Kind)
		}
		return d.launcher.Launch(ctx, desc.Value)
	case action.KindURL:
		if d.opener == nil {
			return missingExecutor(desc.Kind)
		}
		return d.opener.OpenURL(ctx, desc.Value)
	case action.KindCommand:
		if d.runner == nil {
			return missingExecutor(desc.Kind)
		}
		return d.runCommand(ctx, desc.Value)
	case action.KindFolder:
		if d.revealer == nil {
			return missingExecutor(desc.Kind)
		}
		return d.revealer.Reveal(ctx, desc.Value)
	}
	return errors.InvalidInput(fmt.Sprintf("unknown action kind %q", desc.Kind))
}

// runCommand applies the exit status policy: 0 and 1 are success, any other
// code (including death by signal) is reported with the command's output.
func (d *Dispatcher) runCommand(ctx context.Context, script string) error {
	res, err := d.runner.Run(ctx, script, time.Duration(d.commandTimeout.Load()))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 && res.ExitCode != 1 {
		return errors.CommandExited(script, res.ExitCode, strings.TrimSpace(res.Output))
	}
	return nil
}

func (d *Dispatcher) notify(title, message string) {
	if d.notifier != nil {
		d.notifier.Notify(title, message)
	}
}

func (d *Dispatcher) record(rec Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, rec)
	if len(d.history) > historySize {
		d.history = d.history[len(d.history)-historySize:]
	}
}

// History returns the most recent outcomes, oldest first.
func (d *Dispatcher) History() []Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Record(nil), d.history...)
}

// Wait blocks until every dispatched action has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close cancels running actions, terminating command process groups, and
// waits up to timeout for them to finish.
func (d *Dispatcher) Close(timeout time.Duration) {
	d.cancel()
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		d.logger.Warn("Timed out waiting for actions to finish")
	}
}

func missingExecutor(kind action.Kind) error {
	return errors.New(errors.ErrCodeInternal, fmt.Sprintf("no executor configured for %s actions", kind))
}

func failureTitle(desc action.Descriptor, err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeCommandTimeout:
		return "Command timed out"
	case errors.ErrCodeCommandFailed, errors.ErrCodeCommandNotFound:
		return "Command failed"
	case errors.ErrCodeAppNotFound, errors.ErrCodeNotAnApplication, errors.ErrCodeLaunchFailed:
		return "Could not launch " + desc.Title()
	case errors.ErrCodeInvalidURL, errors.ErrCodeOpenFailed:
		if desc.Kind == action.KindFolder {
			return "Could not open folder"
		}
		return "Could not open URL"
	case errors.ErrCodeFolderNotFound, errors.ErrCodeNotADirectory:
		return "Could not open folder"
	}
	return "Leader action failed"
}
