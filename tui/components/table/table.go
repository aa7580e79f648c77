// Package table renders themed lipgloss tables for CLI output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/leader/tui/theme"
)

// Options provides additional configuration for the table
type Options struct {
	Bordered      bool
	AlternateRows bool
	// MutedColumn renders one column faint, -1 for none.
	MutedColumn int
	Theme       *theme.Theme
}

// DefaultOptions returns the default table options
func DefaultOptions() Options {
	return Options{
		Bordered:      true,
		AlternateRows: true,
		MutedColumn:   -1,
		Theme:         theme.DefaultTheme,
	}
}

// Builder provides a fluent interface for creating styled tables
type Builder struct {
	headers []string
	rows    [][]string
	width   int
	options Options
}

// NewBuilder creates a new table builder
func NewBuilder() *Builder {
	return &Builder{options: DefaultOptions()}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.options.Theme = t
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.options.Bordered = bordered
	return b
}

// WithAlternateRows enables or disables alternating row colors
func (b *Builder) WithAlternateRows(alternate bool) *Builder {
	b.options.AlternateRows = alternate
	return b
}

// WithMutedColumn renders column col faint.
func (b *Builder) WithMutedColumn(col int) *Builder {
	b.options.MutedColumn = col
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.headers = headers
	return b
}

// WithRows appends rows
func (b *Builder) WithRows(rows ...[]string) *Builder {
	b.rows = append(b.rows, rows...)
	return b
}

// WithWidth sets the total table width
func (b *Builder) WithWidth(width int) *Builder {
	b.width = width
	return b
}

// Build creates the styled table
func (b *Builder) Build() *ltable.Table {
	opts := b.options
	if opts.Theme == nil {
		opts.Theme = theme.DefaultTheme
	}
	t := opts.Theme

	tbl := ltable.New().Headers(b.headers...).Rows(b.rows...)
	if opts.Bordered {
		tbl = tbl.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	} else {
		tbl = tbl.Border(lipgloss.HiddenBorder())
	}
	if b.width > 0 {
		tbl = tbl.Width(b.width)
	}

	// Data rows are indexed from 0; the header row is ltable.HeaderRow.
	tbl = tbl.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.Bold.Padding(0, 1)
		}
		style := lipgloss.NewStyle().Padding(0, 1)
		if opts.AlternateRows && row%2 == 1 {
			style = style.Background(t.Colors.SubtleBg)
		}
		if col == opts.MutedColumn {
			style = style.Foreground(t.Colors.MutedText)
		}
		return style
	})
	return tbl
}

// SimpleTable renders a bordered table with headers and rows.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		String()
}

// StatusTable renders label/value pairs without borders.
func StatusTable(items [][]string) string {
	b := NewBuilder().WithBorder(false).WithAlternateRows(false)
	for _, item := range items {
		if len(item) < 2 {
			continue
		}
		b.WithRows([]string{theme.DefaultTheme.Muted.Render(item[0] + ":"), item[1]})
	}
	return b.Build().String()
}
