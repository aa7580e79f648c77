package cmd

import (
	"time"

	"github.com/grovetools/leader/cli"
	"github.com/grovetools/leader/config"
	"github.com/grovetools/leader/logging"
	"github.com/grovetools/leader/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the locations leader reads and writes.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	ConfigFile string `json:"config_file"`
	DataDir    string `json:"data_dir"`
	StateDir   string `json:"state_dir"`
	CacheDir   string `json:"cache_dir"`
	LogFile    string `json:"log_file"`
	Socket     string `json:"socket"`
	PidFile    string `json:"pid_file"`
}

// NewPathsCmd returns the `paths` command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the directories and files leader uses",
		Long: `Print the XDG-based locations leader uses. Setting LEADER_HOME moves
all of them under one directory.

- config_file: the config that would be loaded now (or where init writes one)
- state_dir: logs and the daemon PID file
- socket: the daemon's unix socket`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := config.Locate(cli.GetOptions(cmd).ConfigFile)
			if err != nil {
				configFile = config.DefaultPath()
			}

			out := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				ConfigFile: configFile,
				DataDir:    paths.DataDir(),
				StateDir:   paths.StateDir(),
				CacheDir:   paths.CacheDir(),
				LogFile:    logging.DefaultLogFile(time.Now()),
				Socket:     paths.SocketPath(),
				PidFile:    paths.PidFilePath(),
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}

			p := pretty(cmd)
			p.Path("Config dir", out.ConfigDir)
			p.Path("Config file", out.ConfigFile)
			p.Path("Data dir", out.DataDir)
			p.Path("State dir", out.StateDir)
			p.Path("Cache dir", out.CacheDir)
			p.Path("Log file", out.LogFile)
			p.Path("Socket", out.Socket)
			p.Path("PID file", out.PidFile)
			return nil
		},
	}
}
