// Package cmd holds the leader command tree.
package cmd

import (
	"encoding/json"
	"io"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/config"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/daemon"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/spf13/cobra"
)

// NewRootCmd returns the `leader` command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand("leader", "Keyboard-driven leader key launcher")
	root.Long = `Press a leader key, type a short sequence, and leader launches the
application, URL, shell command or folder bound to it.

The daemon owns the leader state; key sources (the tty front end or
scripts calling 'leader key') feed it characters over a unix socket.

Examples:
  leader init
  leader daemon start
  leader activate && leader key os
  leader tty`

	root.AddCommand(
		NewDaemonCmd(),
		NewActivateCmd(),
		NewKeyCmd(),
		NewEndCmd(),
		NewStatusCmd(),
		NewTableCmd(),
		NewValidateCmd(),
		NewSchemaCmd(),
		NewConfigCmd(),
		NewInitCmd(),
		NewEventsCmd(),
		NewLogsCmd(),
		NewTTYCmd(),
		NewPathsCmd(),
		cli.NewVersionCommand(),
	)
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pretty(cmd *cobra.Command) *logging.Pretty {
	return logging.NewPretty().WithWriter(cmd.OutOrStdout())
}

func client() (*daemon.Client, error) {
	return daemon.Connect("")
}

// localTable loads the config named by --config (or discovered) and builds
// its table without a daemon.
func localTable(cmd *cobra.Command) (string, *config.Config, *sequence.Table, []sequence.Diagnostic, error) {
	path, err := config.Locate(cli.GetOptions(cmd).ConfigFile)
	if err != nil {
		return "", nil, nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return path, nil, nil, nil, err
	}
	table, diags := sequence.Build(cfg.Tree())
	return path, cfg, table, diags, nil
}

func diagnosticStrings(diags []sequence.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.String())
	}
	return out
}
