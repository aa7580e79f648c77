package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/pkg/daemon"
	"github.com/grovetools/leader/pkg/dispatch"
	"github.com/grovetools/leader/tui/components/table"
	"github.com/grovetools/leader/tui/theme"
	"github.com/spf13/cobra"
)

// NewStatusCmd returns the `status` command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state, config and recent dispatches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), st)
			}
			showHistory, _ := cmd.Flags().GetBool("history")
			renderStatus(cmd, st, showHistory)
			return nil
		},
	}
	cmd.Flags().Bool("history", true, "Show recent dispatches")
	return cmd
}

func renderStatus(cmd *cobra.Command, st *daemon.Status, showHistory bool) {
	w := cmd.OutOrStdout()
	t := theme.DefaultTheme

	mode := string(st.State.Mode)
	if st.State.Buffer != "" {
		mode += " " + t.Key.Render(st.State.Buffer)
	}
	rows := [][]string{
		{"PID", strconv.Itoa(st.PID)},
		{"Version", st.Version},
		{"Uptime", st.Uptime},
		{"Config", st.ConfigPath},
		{"Loaded", humanize.Time(st.ConfigLoadedAt)},
		{"Sequences", strconv.Itoa(st.State.Entries)},
		{"Timeout", st.Timeout.String()},
		{"Settle delay", st.SettleDelay.String()},
		{"Notifier", st.Notifier},
		{"Mode", mode},
	}
	if st.ConfigError != "" {
		rows = append(rows, []string{"Config error", t.Error.Render(st.ConfigError)})
	}
	fmt.Fprintln(w, table.StatusTable(rows))

	if len(st.Diagnostics) > 0 {
		p := pretty(cmd)
		p.Blank()
		for _, d := range st.Diagnostics {
			p.Warn(d)
		}
	}

	if !showHistory || len(st.History) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Bold.Render("Recent dispatches"))
	fmt.Fprintln(w, historyTable(st.History))
}

func historyTable(history []dispatch.Record) string {
	t := theme.DefaultTheme
	rows := make([][]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		r := history[i]
		result := t.Success.Render("ok")
		if r.Error != "" {
			result = t.Error.Render(r.Error)
		}
		rows = append(rows, []string{
			humanize.Time(r.Started),
			string(r.Action.Kind),
			r.Action.Title(),
			r.Duration.Round(time.Millisecond).String(),
			result,
		})
	}
	return table.NewBuilder().
		WithHeaders("When", "Kind", "Action", "Took", "Result").
		WithRows(rows...).
		WithMutedColumn(0).
		Build().
		String()
}
