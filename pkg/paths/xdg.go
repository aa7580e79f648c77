// Package paths resolves leader's configuration, state and runtime locations.
//
// Resolution order:
// 1. LEADER_HOME (portable root) → $LEADER_HOME/{config,data,state,cache,run}
// 2. XDG base directories as reported by github.com/adrg/xdg
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under each base directory.
const AppName = "leader"

// HomeEnv overrides every base directory when set.
const HomeEnv = "LEADER_HOME"

func resolve(sub, base string) string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, sub)
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, AppName)
}

// ConfigDir returns the directory holding config.yml.
func ConfigDir() string {
	return resolve("config", xdg.ConfigHome)
}

// DataDir returns the leader data directory.
func DataDir() string {
	return resolve("data", xdg.DataHome)
}

// StateDir returns the directory for logs and the PID file.
func StateDir() string {
	return resolve("state", xdg.StateHome)
}

// CacheDir returns the directory for regenerable data.
func CacheDir() string {
	return resolve("cache", xdg.CacheHome)
}

// RuntimeDir returns the directory for the daemon socket.
// adrg/xdg falls back to a temp directory when XDG_RUNTIME_DIR is unset.
func RuntimeDir() string {
	return resolve("run", xdg.RuntimeDir)
}

// LogDir returns the directory for log files.
func LogDir() string {
	return filepath.Join(StateDir(), "logs")
}

// SocketPath returns the path to the daemon unix socket.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), "leaderd.sock")
}

// PidFilePath returns the path to the daemon PID file.
func PidFilePath() string {
	return filepath.Join(StateDir(), "leaderd.pid")
}

// EnsureDirs creates all leader directories if they don't exist.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), DataDir(), StateDir(), CacheDir(), RuntimeDir(), LogDir()} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
