package cmd

import (
	"fmt"
	"strings"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/daemon"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/grovetools/leader/tui/components/table"
	"github.com/spf13/cobra"
)

// NewTableCmd returns the `table` command.
func NewTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table [prefix]",
		Short: "List every key sequence and the action it runs",
		Long: `List the flattened sequence table. The daemon's live table is shown
when it is running; otherwise the config file is loaded directly.

Examples:
  leader table
  leader table o
  leader table --local --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, _ := cmd.Flags().GetBool("local")

			tbl, source, err := loadTable(cmd, local)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				tbl.Entries = filterPrefix(tbl.Entries, args[0])
			}

			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), tbl)
			}

			w := cmd.OutOrStdout()
			if len(tbl.Entries) == 0 {
				fmt.Fprintln(w, "No sequences.")
			} else {
				fmt.Fprintln(w, renderEntries(tbl.Entries))
			}
			p := pretty(cmd)
			p.Field("Source", source)
			for _, d := range tbl.Diagnostics {
				p.Warn(d)
			}
			return nil
		},
	}
	cmd.Flags().Bool("local", false, "Read the config file even when the daemon is running")
	return cmd
}

func loadTable(cmd *cobra.Command, local bool) (*daemon.Table, string, error) {
	if !local {
		c, err := client()
		if err == nil {
			defer c.Close()
			tbl, err := c.Table(cmd.Context())
			return tbl, "daemon", err
		}
		if !errors.Is(err, errors.ErrCodeDaemonNotRunning) {
			return nil, "", err
		}
	}

	path, _, t, diags, err := localTable(cmd)
	if err != nil {
		return nil, "", err
	}
	return &daemon.Table{Entries: t.Entries(), Diagnostics: diagnosticStrings(diags)}, path, nil
}

func filterPrefix(entries []sequence.Entry, prefix string) []sequence.Entry {
	prefix = strings.ToLower(prefix)
	out := entries[:0:0]
	for _, e := range entries {
		if strings.HasPrefix(e.Sequence, prefix) {
			out = append(out, e)
		}
	}
	return out
}

func renderEntries(entries []sequence.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Sequence, string(e.Action.Kind), e.Action.Title(), e.Action.Value})
	}
	return table.NewBuilder().
		WithHeaders("Keys", "Kind", "Label", "Value").
		WithRows(rows...).
		WithMutedColumn(3).
		Build().
		String()
}
