package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/leader"
	"github.com/grovetools/leader/tui/theme"
	"github.com/spf13/cobra"
)

// NewActivateCmd returns the `activate` command.
func NewActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Enter leader mode (toggles off when already active)",
		Long: `Enter leader mode in the running daemon. Bind this to your leader
key in a hotkey daemon such as skhd or sxhkd.

Examples:
  leader activate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.Activate(cmd.Context())
			if err != nil {
				return err
			}
			return printState(cmd, st)
		},
	}
}

// NewKeyCmd returns the `key` command.
func NewKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <chars>",
		Short: "Send typed characters to the active leader session",
		Long: `Send characters to the daemon one at a time, as if typed after the
leader key. Characters sent while leader mode is idle are ignored.

Examples:
  leader key o
  leader activate && leader key os`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chars := strings.Join(args, "")
			if chars == "" {
				return errors.InvalidInput("no characters given")
			}

			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			var st leader.State
			for _, r := range chars {
				if st, err = c.Key(cmd.Context(), string(r)); err != nil {
					return err
				}
			}
			return printState(cmd, st)
		},
	}
}

// NewEndCmd returns the `end` command.
func NewEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end",
		Short: "Leave leader mode, running the buffer if it is a complete sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.End(cmd.Context())
			if err != nil {
				return err
			}
			return printState(cmd, st)
		},
	}
}

func printState(cmd *cobra.Command, st leader.State) error {
	if cli.GetOptions(cmd).JSONOutput {
		return printJSON(cmd.OutOrStdout(), st)
	}
	writeState(cmd.OutOrStdout(), st)
	return nil
}

func writeState(w io.Writer, st leader.State) {
	t := theme.DefaultTheme
	if st.Mode != leader.ModeActive {
		fmt.Fprintln(w, t.Muted.Render("idle"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", t.Highlight.Render("active"), t.Key.Render(st.Buffer))
}
