// Package notify delivers user-visible notifications about dispatched actions.
package notify

import (
	"sync"
	"time"

	"github.com/grovetools/leader/logging"
	"github.com/sirupsen/logrus"
)

// Urgency represents notification priority levels as defined by freedesktop notifications.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification is a single desktop notification.
type Notification struct {
	Title   string
	Body    string
	Urgency Urgency
	// Timeout in ms; -1 lets the server decide.
	Timeout int32
}

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Notify(title, message string)
}

// Backend delivers a notification synchronously.
type Backend interface {
	Send(n Notification) error
	Name() string
}

// Options configures New.
type Options struct {
	// Enabled selects the platform backend; otherwise notifications are only logged.
	Enabled bool
	// QueueSize bounds pending notifications. Defaults to 32.
	QueueSize int
}

// New returns an Async notifier over the platform backend, falling back to
// logging when the platform backend is unavailable or disabled.
func New(opts Options) *Async {
	logger := logging.NewLogger("notify")
	var backend Backend = LogBackend{logger: logger}
	if opts.Enabled {
		if b, err := Platform(); err == nil {
			backend = b
		} else {
			logger.WithError(err).Warn("Desktop notifications unavailable, logging instead")
		}
	}
	return NewAsync(backend, opts.QueueSize)
}

// LogBackend writes notifications to the log.
type LogBackend struct {
	logger *logrus.Entry
}

// NewLogBackend returns a LogBackend using the notify component logger.
func NewLogBackend() LogBackend {
	return LogBackend{logger: logging.NewLogger("notify")}
}

func (b LogBackend) Send(n Notification) error {
	b.logger.WithFields(logrus.Fields{"title": n.Title, "urgency": n.Urgency}).Info(n.Body)
	return nil
}

func (b LogBackend) Name() string { return "log" }

// Async delivers notifications on a background goroutine. When the queue is
// full new notifications are dropped.
type Async struct {
	backend Backend
	logger  *logrus.Entry

	mu     sync.Mutex
	closed bool
	queue  chan Notification
	done   chan struct{}
}

// NewAsync starts a delivery goroutine for backend.
func NewAsync(backend Backend, size int) *Async {
	if size <= 0 {
		size = 32
	}
	a := &Async{
		backend: backend,
		logger:  logging.NewLogger("notify"),
		queue:   make(chan Notification, size),
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

// Backend returns the name of the delivering backend.
func (a *Async) Backend() string {
	return a.backend.Name()
}

// Notify queues a normal-urgency notification.
func (a *Async) Notify(title, message string) {
	a.Send(Notification{Title: title, Body: message, Urgency: UrgencyNormal, Timeout: -1})
}

// Send queues n. It never blocks.
func (a *Async) Send(n Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- n:
	default:
		a.logger.WithField("title", n.Title).Warn("Notification queue full, dropping")
	}
}

// Close stops accepting notifications and waits up to timeout for the
// queue to drain.
func (a *Async) Close(timeout time.Duration) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-time.After(timeout):
		a.logger.Warn("Timed out draining notification queue")
	}
}

func (a *Async) loop() {
	defer close(a.done)
	for n := range a.queue {
		if err := a.backend.Send(n); err != nil {
			a.logger.WithError(err).WithField("backend", a.backend.Name()).Warn("Failed to deliver notification")
		}
	}
}
