package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pretty writes styled, human-oriented output for CLI commands. Unlike the
// component loggers it always writes, regardless of level.
type Pretty struct {
	w      io.Writer
	styles PrettyStyles
}

// PrettyStyles contains lipgloss styles for the different line kinds.
type PrettyStyles struct {
	Success  lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Key      lipgloss.Style
	Value    lipgloss.Style
	Path     lipgloss.Style
	Code     lipgloss.Style
	Sequence lipgloss.Style
}

// DefaultPrettyStyles returns the default styling.
func DefaultPrettyStyles() PrettyStyles {
	return PrettyStyles{
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),            // Blue
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),            // Yellow
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
		Key:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Path:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
		Code:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		Sequence: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	}
}

// NewPretty returns a Pretty writing to stdout.
func NewPretty() *Pretty {
	return &Pretty{w: os.Stdout, styles: DefaultPrettyStyles()}
}

// WithWriter sets the destination.
func (p *Pretty) WithWriter(w io.Writer) *Pretty {
	p.w = w
	return p
}

func (p *Pretty) Success(message string) {
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Success.Render("✓"), p.styles.Success.Render(message))
}

func (p *Pretty) Info(message string) {
	fmt.Fprintln(p.w, p.styles.Info.Render(message))
}

func (p *Pretty) Warn(message string) {
	fmt.Fprintf(p.w, "%s %s\n", p.styles.Warning.Render("⚠"), p.styles.Warning.Render(message))
}

func (p *Pretty) Error(message string, err error) {
	fmt.Fprintf(p.w, "%s %s", p.styles.Error.Render("✗"), p.styles.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.w, ": %s", p.styles.Error.Render(err.Error()))
	}
	fmt.Fprintln(p.w)
}

// Field prints a key-value pair.
func (p *Pretty) Field(key string, value interface{}) {
	fmt.Fprintf(p.w, "%s: %s\n", p.styles.Key.Render(key), p.styles.Value.Render(fmt.Sprint(value)))
}

// Path prints a labelled file path.
func (p *Pretty) Path(label, path string) {
	fmt.Fprintf(p.w, "%s: %s\n", p.styles.Key.Render(label), p.styles.Path.Render(path))
}

// Sequence prints one table entry, padding the sequence to width.
func (p *Pretty) Sequence(seq string, width int, title string) {
	pad := width - len([]rune(seq))
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(p.w, "  %s%s  %s\n", p.styles.Sequence.Render(seq), strings.Repeat(" ", pad), title)
}

// Code prints command output, indented.
func (p *Pretty) Code(content string) {
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		fmt.Fprintf(p.w, "  %s\n", p.styles.Code.Render(line))
	}
}

func (p *Pretty) Divider() {
	fmt.Fprintln(p.w, p.styles.Key.Render(strings.Repeat("─", 60)))
}

func (p *Pretty) Blank() {
	fmt.Fprintln(p.w)
}
