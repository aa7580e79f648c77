package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/internal/daemon/engine"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/tui/leadertty"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewTTYCmd returns the `tty` command.
func NewTTYCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tty",
		Short: "Use leader from a terminal without the daemon",
		Long: `Run leader mode inside this terminal. The leader key (ctrl+space by
default, tty.leader_key in the config) activates it; typed characters
select the action and escape ends the session. Logs go to the log file
while the terminal is in use.

Examples:
  leader tty
  leader tty --alt-screen`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
				return errors.InvalidInput("leader tty needs an interactive terminal")
			}
			altScreen, _ := cmd.Flags().GetBool("alt-screen")

			logging.SetGlobalOutput(io.Discard)
			defer logging.SetGlobalOutput(os.Stderr)

			eng, err := engine.New(engine.Options{
				ConfigPath: cli.GetOptions(cmd).ConfigFile,
				Watch:      true,
				Logger:     logging.NewLogger("tty"),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)

			engineDone := make(chan error, 1)
			go func() { engineDone <- eng.Run(ctx) }()

			cfg, _ := eng.Config()
			keys := leadertty.NewKeyMap(cfg.TTY.LeaderKey, cfg.TTY.EndKey)

			var opts []tea.ProgramOption
			if altScreen {
				opts = append(opts, tea.WithAltScreen())
			}
			runErr := leadertty.Run(ctx, eng.Machine(), keys, opts...)

			cancel()
			if err := <-engineDone; err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
	cmd.Flags().Bool("alt-screen", false, "Use the terminal's alternate screen")
	return cmd
}
