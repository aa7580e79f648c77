// Package leader implements leader mode: after activation, typed characters
// accumulate in a buffer that is matched against a sequence table until an
// action is dispatched or the session ends.
//
// All state is owned by the goroutine running Machine.Run. Exported methods
// hand a closure to that goroutine and wait for it to finish, so they are
// safe to call from any goroutine, including timer callbacks and key sources.
package leader

import (
	"context"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/action"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/sirupsen/logrus"
)

// Mode is the machine's input mode.
type Mode string

const (
	ModeIdle   Mode = "idle"
	ModeActive Mode = "active"
)

const (
	// DefaultTimeout ends a session when no key arrives for this long.
	DefaultTimeout = 5 * time.Second
	// DefaultSettleDelay is how long an ambiguous match waits for a longer sequence.
	DefaultSettleDelay = 500 * time.Millisecond
)

// Dispatcher runs a resolved action. Dispatch must not block.
type Dispatcher interface {
	Dispatch(d action.Descriptor)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(d action.Descriptor)

func (f DispatcherFunc) Dispatch(d action.Descriptor) { f(d) }

// Options configures a Machine. Table is used by activations until
// SetTable replaces it.
type Options struct {
	Timeout     time.Duration
	SettleDelay time.Duration
	Clock       Clock
	Table       *sequence.Table
	Logger      *logrus.Entry
}

// State is a point-in-time copy of the machine state.
type State struct {
	Mode    Mode      `json:"mode"`
	Buffer  string    `json:"buffer"`
	Session string    `json:"session,omitempty"`
	Since   time.Time `json:"since"`
	Entries int       `json:"entries"`
}

// timerSlot holds the single live timer of one kind. gen identifies the
// arming so a callback that lost a race with Stop can recognise itself as stale.
type timerSlot struct {
	timer Timer
	gen   uint64
}

// Machine is the leader-mode state machine.
type Machine struct {
	timeout     time.Duration
	settleDelay time.Duration
	clock       Clock
	dispatcher  Dispatcher
	logger      *logrus.Entry

	ops     chan func()
	stopped chan struct{}
	runOnce sync.Once

	subsMu      sync.Mutex
	subscribers map[chan Event]struct{}

	// Owned by the Run goroutine.
	mode       Mode
	buffer     []rune
	session    string
	since      time.Time
	next       *sequence.Table
	table      *sequence.Table
	pending    *sequence.Match
	gen        uint64
	inactivity timerSlot
	settle     timerSlot
}

// New creates a Machine that dispatches resolved actions to d.
func New(d Dispatcher, opts Options) *Machine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger("leader")
	}
	if opts.Table == nil {
		opts.Table = sequence.Empty()
	}

	return &Machine{
		timeout:     opts.Timeout,
		settleDelay: opts.SettleDelay,
		clock:       opts.Clock,
		dispatcher:  d,
		logger:      opts.Logger,
		ops:         make(chan func()),
		stopped:     make(chan struct{}),
		subscribers: make(map[chan Event]struct{}),
		mode:        ModeIdle,
		next:        opts.Table,
		since:       opts.Clock.Now(),
	}
}

// Run processes entry points until ctx is cancelled. It must be called
// exactly once; entry points block until Run is executing them.
func (m *Machine) Run(ctx context.Context) {
	started := false
	m.runOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(m.stopped)

	for {
		select {
		case <-ctx.Done():
			if m.mode == ModeActive {
				m.end(EndShutdown)
			}
			return
		case op := <-m.ops:
			op()
		}
	}
}

// do runs fn on the Run goroutine and waits for it. It reports false if
// the machine has stopped.
func (m *Machine) do(fn func()) bool {
	done := make(chan struct{})
	select {
	case m.ops <- func() { fn(); close(done) }:
	case <-m.stopped:
		return false
	}
	select {
	case <-done:
		return true
	case <-m.stopped:
		return false
	}
}

// Activate enters leader mode. Activating an active machine is a toggle
// and behaves like End.
func (m *Machine) Activate() {
	m.do(m.activate)
}

// Char feeds one typed character to the active session.
func (m *Machine) Char(r rune) {
	m.do(func() { m.char(r) })
}

// End leaves leader mode, dispatching the buffer first if it exactly
// matches a sequence. Ending an idle machine does nothing.
func (m *Machine) End() {
	m.do(m.explicitEnd)
}

// SetTable registers the table used by the next activation. A session in
// progress keeps the table it started with.
func (m *Machine) SetTable(t *sequence.Table) {
	if t == nil {
		t = sequence.Empty()
	}
	m.do(func() { m.next = t })
}

// SetTimings changes the inactivity timeout and settle delay. Timers that
// are already armed keep their old duration. Non-positive values select
// the defaults.
func (m *Machine) SetTimings(timeout, settle time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	m.do(func() {
		m.timeout = timeout
		m.settleDelay = settle
	})
}

// Table returns the table the next activation will use.
func (m *Machine) Table() *sequence.Table {
	var t *sequence.Table
	if !m.do(func() { t = m.next }) {
		return sequence.Empty()
	}
	return t
}

// Candidates returns the entries of the active session's table that extend
// the current buffer. It returns nil while idle.
func (m *Machine) Candidates() []sequence.Entry {
	var out []sequence.Entry
	m.do(func() {
		if m.mode == ModeActive && m.table != nil {
			out = m.table.Candidates(string(m.buffer))
		}
	})
	return out
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	var s State
	m.do(func() {
		s = State{
			Mode:    m.mode,
			Buffer:  string(m.buffer),
			Session: m.session,
			Since:   m.since,
			Entries: m.next.Len(),
		}
	})
	return s
}

func (m *Machine) activate() {
	if m.mode == ModeActive {
		m.logger.Debug("Leader pressed while active, ending session")
		m.explicitEnd()
		return
	}

	m.mode = ModeActive
	m.buffer = m.buffer[:0]
	m.table = m.next
	m.session = uuid.NewString()
	m.since = m.clock.Now()
	m.armInactivity()

	m.logger.WithField("session", m.session).Debug("Leader mode activated")
	m.publish(Event{Type: EventActivated})
}

func (m *Machine) char(r rune) {
	if m.mode != ModeActive {
		m.logger.WithField("char", string(r)).Debug("Ignoring character while idle")
		return
	}

	m.stopTimer(&m.settle)
	m.pending = nil
	m.buffer = append(m.buffer, unicode.ToLower(r))
	m.armInactivity()

	buf := string(m.buffer)
	match := sequence.Classify(m.table, buf)
	m.logger.WithFields(logrus.Fields{"buffer": buf, "result": match.Result.String()}).Debug("Classified buffer")
	m.publish(Event{Type: EventBuffer, Buffer: buf, Result: match.Result.String()})

	switch match.Result {
	case sequence.ExactUnambiguous:
		m.dispatch(match.Action)
		m.end(EndMatched)
	case sequence.ExactAmbiguous:
		m.pending = &match
		m.armSettle()
	case sequence.ValidPrefix:
	case sequence.DeadEnd:
		m.end(EndDeadEnd)
	}
}

func (m *Machine) explicitEnd() {
	if m.mode != ModeActive {
		return
	}
	if match := sequence.Classify(m.table, string(m.buffer)); len(m.buffer) > 0 && match.Result.Exact() {
		m.dispatch(match.Action)
		m.end(EndMatched)
		return
	}
	m.end(EndCancelled)
}

func (m *Machine) onInactivity(gen uint64) {
	if m.mode != ModeActive || m.inactivity.timer == nil || m.inactivity.gen != gen {
		return
	}
	m.inactivity = timerSlot{}
	m.logger.WithField("buffer", string(m.buffer)).Debug("Leader mode timed out")
	m.end(EndTimeout)
}

func (m *Machine) onSettle(gen uint64) {
	if m.mode != ModeActive || m.settle.timer == nil || m.settle.gen != gen || m.pending == nil {
		return
	}
	m.settle = timerSlot{}
	d := m.pending.Action
	m.pending = nil
	m.dispatch(d)
	m.end(EndMatched)
}

func (m *Machine) dispatch(d action.Descriptor) {
	m.logger.WithFields(logrus.Fields{
		"session":  m.session,
		"sequence": string(m.buffer),
		"kind":     d.Kind,
	}).Info("Dispatching action")
	m.publish(Event{Type: EventDispatched, Buffer: string(m.buffer), Action: &d})
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(d)
	}
}

// end returns to idle, cancelling both timers and discarding the buffer.
func (m *Machine) end(reason EndReason) {
	m.stopTimer(&m.inactivity)
	m.stopTimer(&m.settle)
	m.pending = nil
	buf := string(m.buffer)
	m.buffer = m.buffer[:0]
	m.mode = ModeIdle
	m.since = m.clock.Now()

	m.logger.WithFields(logrus.Fields{"session": m.session, "reason": reason}).Debug("Leader mode ended")
	m.publish(Event{Type: EventEnded, Buffer: buf, Reason: reason})
	m.table = nil
}

func (m *Machine) armInactivity() {
	m.arm(&m.inactivity, m.timeout, m.onInactivity)
}

func (m *Machine) armSettle() {
	m.arm(&m.settle, m.settleDelay, m.onSettle)
}

func (m *Machine) arm(slot *timerSlot, d time.Duration, fire func(gen uint64)) {
	m.stopTimer(slot)
	m.gen++
	gen := m.gen
	slot.gen = gen
	slot.timer = m.clock.AfterFunc(d, func() {
		m.do(func() { fire(gen) })
	})
}

func (m *Machine) stopTimer(slot *timerSlot) {
	if slot.timer != nil {
		slot.timer.Stop()
	}
	*slot = timerSlot{}
}
