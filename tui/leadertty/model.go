// Package leadertty is a terminal key source for a leader.Machine: it reads
// raw keys with bubbletea and shows the current session on a status line.
package leadertty

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/grovetools/leader/tui/theme"
)

const (
	maxCandidates = 8
	maxRecent     = 5
)

// Controller is the part of leader.Machine the key source drives.
type Controller interface {
	Activate()
	Char(r rune)
	End()
	Snapshot() leader.State
	Candidates() []sequence.Entry
}

type eventMsg leader.Event

type eventsClosedMsg struct{}

// Model is the bubbletea model for `leader tty`.
type Model struct {
	ctrl   Controller
	events <-chan leader.Event
	keys   KeyMap
	help   help.Model
	theme  *theme.Theme

	state      leader.State
	candidates []sequence.Entry
	recent     []string
	width      int
	quitting   bool
}

// New creates a model driving ctrl. events should be a subscription on the
// same machine; it may be nil.
func New(ctrl Controller, events <-chan leader.Event, keys KeyMap) Model {
	return Model{
		ctrl:   ctrl,
		events: events,
		keys:   keys,
		help:   help.New(),
		theme:  theme.DefaultTheme,
		state:  ctrl.Snapshot(),
	}
}

// Run starts a program on the terminal and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, m *leader.Machine, keys KeyMap, opts ...tea.ProgramOption) error {
	events, unsubscribe := m.Subscribe()
	defer unsubscribe()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(m, events, keys), opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// Init starts listening for machine events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan leader.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update handles key presses and machine events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Leader):
			m.ctrl.Activate()
		case key.Matches(msg, m.keys.End):
			m.ctrl.End()
		case msg.Type == tea.KeyRunes && !msg.Alt:
			for _, r := range msg.Runes {
				m.ctrl.Char(r)
			}
		case msg.Type == tea.KeySpace:
			m.ctrl.Char(' ')
		default:
			return m, nil
		}
		m.refresh()
		return m, nil

	case eventMsg:
		m.record(leader.Event(msg))
		m.refresh()
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.events = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) refresh() {
	m.state = m.ctrl.Snapshot()
	m.candidates = nil
	if m.state.Mode == leader.ModeActive {
		m.candidates = m.ctrl.Candidates()
	}
}

func (m *Model) record(ev leader.Event) {
	var line string
	switch ev.Type {
	case leader.EventDispatched:
		if ev.Action != nil {
			line = fmt.Sprintf("%s → %s", ev.Buffer, ev.Action)
		}
	case leader.EventEnded:
		if ev.Reason != leader.EndMatched {
			line = fmt.Sprintf("ended (%s)", ev.Reason)
		}
	}
	if line == "" {
		return
	}
	m.recent = append(m.recent, line)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
}

// View renders the status line, candidates and recent outcomes.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	t := m.theme

	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if m.state.Mode == leader.ModeActive {
		shown := m.candidates
		if len(shown) > maxCandidates {
			shown = shown[:maxCandidates]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "  %s  %s %s\n",
				t.Key.Render(c.Sequence),
				t.Muted.Render(string(c.Action.Kind)),
				c.Action.Title())
		}
		if extra := len(m.candidates) - len(shown); extra > 0 {
			b.WriteString(t.Muted.Render(fmt.Sprintf("  … %d more", extra)))
			b.WriteString("\n")
		}
	}

	for _, line := range m.recent {
		b.WriteString(t.Muted.Render("  " + line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) statusLine() string {
	t := m.theme
	title := t.Title.Render("leader")

	if m.state.Mode != leader.ModeActive {
		badge := t.Muted.Render("idle")
		count := t.Muted.Render(fmt.Sprintf("%d sequences", m.state.Entries))
		return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, "  ", count)
	}

	badge := t.Highlight.Render("ACTIVE")
	buffer := t.Key.Render(m.state.Buffer + "_")
	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badge, "  ", buffer)
}
