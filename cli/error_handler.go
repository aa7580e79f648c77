package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/tui/theme"
	"github.com/spf13/cobra"
)

// ErrorHandler turns errors into user-facing messages.
type ErrorHandler struct {
	Verbose bool
	out     io.Writer
}

// NewErrorHandler creates an ErrorHandler writing to stderr.
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		out:     os.Stderr,
	}
}

// WithWriter redirects the handler's output.
func (h *ErrorHandler) WithWriter(w io.Writer) *ErrorHandler {
	h.out = w
	return h
}

// Handle prints a message for err, with a hint for the codes that have one,
// and returns err unchanged.
func (h *ErrorHandler) Handle(cmd *cobra.Command, err error) error {
	t := theme.DefaultTheme
	red := lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Red)
	hint := func(format string, args ...interface{}) {
		fmt.Fprintln(h.out, t.Muted.Render(fmt.Sprintf(format, args...)))
	}

	le, _ := errors.As(err)
	detail := func(key string) interface{} {
		if le == nil {
			return nil
		}
		return le.Details[key]
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.out, "%s configuration not found at %v\n", red.Render("Error:"), detail("path"))
		hint("Run 'leader init' to create one.")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.out, "%s %s\n", red.Render("Invalid configuration:"), errors.UserMessage(err))
		if p := detail("path"); p != nil {
			hint("File: %v", p)
		}
		hint("Run 'leader validate' after editing to check the file.")

	case errors.ErrCodeDaemonNotRunning:
		fmt.Fprintf(h.out, "%s the leader daemon is not running\n", red.Render("Error:"))
		hint("Start it with 'leader daemon start'.")

	case errors.ErrCodeDaemonRunning:
		fmt.Fprintf(h.out, "%s the leader daemon is already running (PID %v)\n", red.Render("Error:"), detail("pid"))
		hint("Stop it with 'leader daemon stop'.")

	default:
		fmt.Fprintf(h.out, "%s %s\n", red.Render("Error:"), errors.UserMessage(err))
		if cmd != nil {
			hint("Run '%s --help' for usage.", cmd.CommandPath())
		}
	}

	if h.Verbose && le != nil {
		fmt.Fprintf(h.out, "\nError details:\n%s\n", le.ToJSON())
	}
	return err
}
