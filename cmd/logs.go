package cmd

import (
	"bufio"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/config"
	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/paths"
	"github.com/grovetools/leader/util/pathutil"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the leader log file",
		Long: `Print the leader log file. Without logging.file.path in the config this
is today's file in the log directory, or the newest one there.

Examples:
  # Follow the daemon log
  leader logs -f

  # Last 50 lines
  leader logs --tail 50`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of the log (default: all)")
	cmd.Flags().Bool("path", false, "Print the log file path and exit")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")
	pathOnly, _ := cmd.Flags().GetBool("path")

	path, err := resolveLogFile(cli.GetOptions(cmd).ConfigFile, time.Now())
	if err != nil && !(follow && path != "") {
		return err
	}
	if pathOnly {
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}
	logger.WithField("log_file", path).Debug("Reading log file")

	out := cmd.OutOrStdout()
	var offset int64
	if err == nil {
		lines, end, err := readLastLines(path, tailLines)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to read log file").WithDetail("path", path)
		}
		for _, line := range lines {
			fmt.Fprintln(out, line)
		}
		offset = end
	}
	if !follow {
		return nil
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Location:  &tail.SeekInfo{Offset: offset, Whence: io.SeekStart},
		Logger:    stdlog.New(io.Discard, "", 0),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to follow log file").WithDetail("path", path)
	}
	defer t.Cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			_ = t.Stop()
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				logger.WithError(line.Err).Debug("Tail error")
				continue
			}
			fmt.Fprintln(out, line.Text)
		}
	}
}

// resolveLogFile returns the configured log file, today's default file, or
// the newest file in the log directory, in that order. When nothing exists
// yet it returns today's default path together with an error.
func resolveLogFile(configFlag string, now time.Time) (string, error) {
	if cfgPath, err := config.Locate(configFlag); err == nil {
		if cfg, err := config.Load(cfgPath); err == nil && cfg.Logging.File.Path != "" {
			p := pathutil.ExpandHome(cfg.Logging.File.Path)
			if _, err := os.Stat(p); err != nil {
				return p, errors.New(errors.ErrCodeInvalidInput, "log file does not exist yet").WithDetail("path", p)
			}
			return p, nil
		}
	}

	today := logging.DefaultLogFile(now)
	if _, err := os.Stat(today); err == nil {
		return today, nil
	}
	if latest, err := latestLogFile(paths.LogDir()); err == nil {
		return latest, nil
	}
	return today, errors.New(errors.ErrCodeInvalidInput, "no log files found").WithDetail("dir", paths.LogDir())
}

// latestLogFile finds the most recently modified leader log in dir,
// preferring files with content.
func latestLogFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("could not read log directory %s: %w", dir, err)
	}

	var latest, latestNonEmpty os.FileInfo
	var latestPath, latestNonEmptyPath string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == nil || info.ModTime().After(latest.ModTime()) {
			latest = info
			latestPath = filepath.Join(dir, entry.Name())
		}
		if info.Size() > 0 && (latestNonEmpty == nil || info.ModTime().After(latestNonEmpty.ModTime())) {
			latestNonEmpty = info
			latestNonEmptyPath = filepath.Join(dir, entry.Name())
		}
	}

	if latestNonEmpty != nil {
		return latestNonEmptyPath, nil
	}
	if latest == nil {
		return "", fmt.Errorf("no log files found in %s", dir)
	}
	return latestPath, nil
}

// readLastLines returns the last n complete lines of path (all of them when
// n is negative) and the offset just past the last complete line.
func readLastLines(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var (
		lines  []string
		offset int64
	)
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		offset += int64(len(line))
		lines = append(lines, strings.TrimRight(line, "\r\n"))
		if n >= 0 && len(lines) > n {
			lines = lines[len(lines)-n:]
		}
	}
	return lines, offset, nil
}
