// Package engine owns the leader machine, its dispatcher and the config
// that feeds them, and keeps the table current as the config file changes.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/grovetools/leader/command"
	"github.com/grovetools/leader/config"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/dispatch"
	"github.com/grovetools/leader/pkg/executor"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/pkg/notify"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/sirupsen/logrus"
)

const shutdownGrace = 5 * time.Second

// Options configures an Engine. Nil executors and notifier select the
// platform implementations.
type Options struct {
	// ConfigPath overrides config discovery.
	ConfigPath string
	// Watch reloads the config when its file changes.
	Watch bool
	Clock leader.Clock

	Launcher  dispatch.Launcher
	URLOpener dispatch.URLOpener
	Revealer  dispatch.FolderRevealer
	Runner    dispatch.CommandRunner
	Notifier  notify.Notifier

	Logger *logrus.Entry
}

// Engine wires config, machine and dispatcher together.
type Engine struct {
	logger     *logrus.Entry
	watch      bool
	path       string
	machine    *leader.Machine
	dispatcher *dispatch.Dispatcher
	notifier   notify.Notifier
	async      *notify.Async
	startedAt  time.Time
	load       func(path string) (*config.Config, error)

	// reloadMu serializes Reload so tables are installed in load order.
	reloadMu sync.Mutex

	mu          sync.RWMutex
	cfg         *config.Config
	loadedAt    time.Time
	loadErr     error
	diagnostics []sequence.Diagnostic
}

// New loads the config and builds the machine. Load failures are returned;
// only later reloads fall back to the previous table.
func New(opts Options) (*Engine, error) {
	path, err := config.Locate(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Configure(cfg.Logging)

	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("engine")
	}

	e := &Engine{
		logger:    opts.Logger,
		watch:     opts.Watch,
		path:      path,
		notifier:  opts.Notifier,
		startedAt: time.Now(),
		load:      config.Load,
	}
	if e.notifier == nil {
		e.async = notify.New(notify.Options{Enabled: cfg.NotificationsEnabled()})
		e.notifier = e.async
	}

	var platform *executor.Platform
	if opts.Launcher == nil || opts.URLOpener == nil || opts.Revealer == nil {
		platform = executor.New()
	}
	if opts.Launcher == nil {
		opts.Launcher = platform
	}
	if opts.URLOpener == nil {
		opts.URLOpener = platform
	}
	if opts.Revealer == nil {
		opts.Revealer = platform
	}
	if opts.Runner == nil {
		opts.Runner = command.NewRunner(cfg.Leader.Shell)
	}

	e.dispatcher = dispatch.New(dispatch.Options{
		Launcher:       opts.Launcher,
		URLOpener:      opts.URLOpener,
		Runner:         opts.Runner,
		Revealer:       opts.Revealer,
		Notifier:       e.notifier,
		CommandTimeout: cfg.Leader.CommandTimeout.D(),
		NotifySuccess:  cfg.Notifications.OnSuccess,
	})

	table, diags := e.build(cfg)
	e.machine = leader.New(e.dispatcher, leader.Options{
		Timeout:     cfg.Leader.Timeout.D(),
		SettleDelay: cfg.Leader.SettleDelay.D(),
		Clock:       opts.Clock,
		Table:       table,
	})
	e.record(cfg, diags)

	e.logger.WithFields(logrus.Fields{
		"config":  path,
		"entries": table.Len(),
	}).Info("Configuration loaded")
	return e, nil
}

// Run drives the machine and, if enabled, the config watcher until ctx is
// cancelled, then waits for in-flight actions.
func (e *Engine) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.machine.Run(ctx)
	}()

	if e.watch {
		w, err := config.NewWatcher(e.path, config.DefaultDebounce, func(string) {
			_ = e.Reload()
		})
		if err != nil {
			e.logger.WithError(err).Warn("Config watcher unavailable, reload with `leader daemon reload`")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.Start(ctx)
			}()
		}
	}

	<-ctx.Done()
	wg.Wait()

	e.dispatcher.Close(shutdownGrace)
	if e.async != nil {
		e.async.Close(time.Second)
	}
	e.logger.Info("Engine stopped")
	return nil
}

// Reload re-reads the config file. On failure the previous table stays in
// effect and the error is reported to the notifier.
func (e *Engine) Reload() error {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()

	cfg, err := e.load(e.path)
	if err != nil {
		e.mu.Lock()
		e.loadErr = err
		e.mu.Unlock()
		e.logger.WithError(err).Error("Config reload failed, keeping previous table")
		e.notifier.Notify("Leader configuration error", errors.UserMessage(err))
		return err
	}

	e.mu.RLock()
	prev := e.cfg
	e.mu.RUnlock()
	if prev != nil {
		if prev.Leader.Shell != cfg.Leader.Shell {
			e.logger.Warn("leader.shell changed, restart the daemon to apply it")
		}
		if prev.NotificationsEnabled() != cfg.NotificationsEnabled() {
			e.logger.Warn("notifications.enabled changed, restart the daemon to apply it")
		}
	}

	logging.Configure(cfg.Logging)
	table, diags := e.build(cfg)
	e.machine.SetTable(table)
	e.machine.SetTimings(cfg.Leader.Timeout.D(), cfg.Leader.SettleDelay.D())
	e.dispatcher.SetCommandTimeout(cfg.Leader.CommandTimeout.D())
	e.dispatcher.SetNotifySuccess(cfg.Notifications.OnSuccess)
	e.record(cfg, diags)

	e.logger.WithField("entries", table.Len()).Info("Configuration reloaded")
	return nil
}

func (e *Engine) build(cfg *config.Config) (*sequence.Table, []sequence.Diagnostic) {
	table, diags := sequence.Build(cfg.Tree())
	for _, d := range diags {
		e.logger.WithFields(logrus.Fields{
			"code":     d.Err.Code,
			"sequence": d.Sequence,
		}).Warn(d.String())
	}
	return table, diags
}

func (e *Engine) record(cfg *config.Config, diags []sequence.Diagnostic) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.loadedAt = time.Now()
	e.loadErr = nil
	e.diagnostics = diags
}

// Machine returns the leader machine.
func (e *Engine) Machine() *leader.Machine {
	return e.machine
}

// Dispatcher returns the action dispatcher.
func (e *Engine) Dispatcher() *dispatch.Dispatcher {
	return e.dispatcher
}

// ConfigPath returns the config file in use.
func (e *Engine) ConfigPath() string {
	return e.path
}

// StartedAt returns when the engine was created.
func (e *Engine) StartedAt() time.Time {
	return e.startedAt
}

// Config returns the last successfully loaded config and when it was loaded.
func (e *Engine) Config() (*config.Config, time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg, e.loadedAt
}

// LastError returns the error from the most recent failed reload, cleared
// by the next successful one.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadErr
}

// Diagnostics returns the table builder's messages for the current config.
func (e *Engine) Diagnostics() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.diagnostics))
	for _, d := range e.diagnostics {
		out = append(out, d.String())
	}
	return out
}

// NotifierName returns the notification backend in use.
func (e *Engine) NotifierName() string {
	if e.async != nil {
		return e.async.Backend()
	}
	return "custom"
}
