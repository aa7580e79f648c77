package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/internal/daemon/engine"
	"github.com/grovetools/leader/internal/daemon/pidfile"
	"github.com/grovetools/leader/internal/daemon/server"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/paths"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

// NewDaemonCmd returns the daemon command with subcommands.
func NewDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run and manage the leader daemon",
		Long:  "The daemon owns leader mode state and runs dispatched actions.",
	}

	cmd.AddCommand(newDaemonStartCmd())
	cmd.AddCommand(newDaemonStopCmd())
	cmd.AddCommand(newDaemonStatusCmd())
	cmd.AddCommand(newDaemonReloadCmd())

	return cmd
}

func newDaemonStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the foreground",
		Long: `Start the leader daemon in the foreground. It loads the config,
listens on the unix socket and reloads whenever the config file changes.

Examples:
  leader daemon start
  leader daemon start --config ~/dotfiles/leader.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("daemon")
			opts := cli.GetOptions(cmd)
			noWatch, _ := cmd.Flags().GetBool("no-watch")

			if err := paths.EnsureDirs(); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to create leader directories")
			}
			pidPath := paths.PidFilePath()
			sockPath := paths.SocketPath()

			if err := pidfile.Acquire(pidPath); err != nil {
				return err
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			eng, err := engine.New(engine.Options{
				ConfigPath: opts.ConfigFile,
				Watch:      !noWatch,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			srv := server.New(logger, eng)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engineDone := make(chan error, 1)
			go func() { engineDone <- eng.Run(ctx) }()

			serveDone := make(chan error, 1)
			go func() { serveDone <- srv.ListenAndServe(sockPath) }()

			logger.WithFields(logrus.Fields{
				"pid":    os.Getpid(),
				"socket": sockPath,
				"config": eng.ConfigPath(),
			}).Info("Starting daemon")

			var serveErr error
			select {
			case <-ctx.Done():
				logger.Info("Received stop signal")
			case serveErr = <-serveDone:
			}
			stop()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("Server shutdown error: %v", err)
			}
			if err := <-engineDone; err != nil {
				logger.WithError(err).Warn("Engine stopped with error")
			}

			if serveErr != nil {
				return errors.Wrap(serveErr, errors.ErrCodeInternal, "server error")
			}
			logger.Info("Daemon stopped")
			return nil
		},
	}

	cmd.Flags().Bool("no-watch", false, "Do not reload when the config file changes")
	return cmd
}

func newDaemonStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			pidPath := paths.PidFilePath()

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}

			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("failed to find process %d: %w", pid, err)
			}
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGTERM to process %d\n", pid)
			return nil
		},
	}
}

func newDaemonStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the daemon is running",
		Long: `Check whether the daemon is running. Exits non-zero when it is not,
which makes it usable from scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}

			if !running {
				return errors.DaemonNotRunning(paths.SocketPath())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Running (PID: %d)\nSocket: %s\n", pid, paths.SocketPath())
			return nil
		},
	}
}

func newDaemonReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Re-read the config file in the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Reload(cmd.Context())
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}

			p := pretty(cmd)
			p.Success(fmt.Sprintf("Reloaded %d sequences", res.Entries))
			p.Path("Config", res.ConfigPath)
			for _, d := range res.Diagnostics {
				p.Warn(d)
			}
			return nil
		},
	}
}
