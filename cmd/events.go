package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/tui/theme"
	"github.com/spf13/cobra"
)

// NewEventsCmd returns the `events` command.
func NewEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Stream leader mode events from the daemon",
		Long: `Print every activation, buffer change, dispatch and session end as
it happens. With --json each event is one JSON object per line.

Examples:
  leader events
  leader events --json | jq .buffer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := c.Events(ctx)
			if err != nil {
				return err
			}

			jsonOutput := cli.GetOptions(cmd).JSONOutput
			enc := json.NewEncoder(cmd.OutOrStdout())
			for ev := range events {
				if jsonOutput {
					if err := enc.Encode(ev); err != nil {
						return err
					}
					continue
				}
				writeEvent(cmd.OutOrStdout(), ev)
			}
			if ctx.Err() == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Event stream closed by daemon")
			}
			return nil
		},
	}
}

func writeEvent(w io.Writer, ev leader.Event) {
	t := theme.DefaultTheme
	stamp := t.Muted.Render(ev.Time.Format("15:04:05.000"))

	var detail string
	switch ev.Type {
	case leader.EventActivated:
		detail = t.Highlight.Render("activated")
	case leader.EventBuffer:
		detail = fmt.Sprintf("%s %s", t.Key.Render(ev.Buffer), t.Muted.Render(ev.Result))
	case leader.EventDispatched:
		detail = fmt.Sprintf("%s %s → %s", t.Success.Render("dispatched"), t.Key.Render(ev.Buffer), ev.Action)
	case leader.EventEnded:
		detail = fmt.Sprintf("%s %s", t.Info.Render("ended"), ev.Reason)
	default:
		detail = string(ev.Type)
	}
	fmt.Fprintf(w, "%s %s\n", stamp, detail)
}
