package leader

import (
	"time"

	"github.com/grovetools/leader/pkg/action"
)

// EventType identifies a machine event.
type EventType string

const (
	EventActivated  EventType = "activated"
	EventBuffer     EventType = "buffer"
	EventDispatched EventType = "dispatched"
	EventEnded      EventType = "ended"
)

// EndReason records why a leader session ended.
type EndReason string

const (
	EndMatched   EndReason = "matched"
	EndDeadEnd   EndReason = "dead_end"
	EndTimeout   EndReason = "timeout"
	EndCancelled EndReason = "cancelled"
	EndShutdown  EndReason = "shutdown"
)

// Event is published to subscribers on every observable state change.
type Event struct {
	Type    EventType          `json:"type"`
	Session string             `json:"session"`
	Mode    Mode               `json:"mode"`
	Buffer  string             `json:"buffer,omitempty"`
	Result  string             `json:"result,omitempty"`
	Action  *action.Descriptor `json:"action,omitempty"`
	Reason  EndReason          `json:"reason,omitempty"`
	Time    time.Time          `json:"time"`
}

// Subscribe returns a channel receiving machine events and a function that
// ends the subscription and closes the channel. The cancel function may be
// called more than once. Slow subscribers miss events rather than stall
// the machine.
func (m *Machine) Subscribe() (<-chan Event, func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	ch := make(chan Event, 64)
	m.subscribers[ch] = struct{}{}
	return ch, func() { m.unsubscribe(ch) }
}

func (m *Machine) unsubscribe(ch chan Event) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if _, ok := m.subscribers[ch]; !ok {
		return
	}
	delete(m.subscribers, ch)
	close(ch)
}

func (m *Machine) publish(ev Event) {
	ev.Session = m.session
	ev.Mode = m.mode
	ev.Time = m.clock.Now()

	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
