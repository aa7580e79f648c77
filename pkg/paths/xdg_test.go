package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderHomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	assert.Equal(t, filepath.Join(home, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(home, "state"), StateDir())
	assert.Equal(t, filepath.Join(home, "run", "leaderd.sock"), SocketPath())
	assert.Equal(t, filepath.Join(home, "state", "leaderd.pid"), PidFilePath())
	assert.Equal(t, filepath.Join(home, "state", "logs"), LogDir())
}

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	require.NoError(t, EnsureDirs())
	for _, dir := range []string{ConfigDir(), DataDir(), StateDir(), CacheDir(), RuntimeDir(), LogDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestXDGFallbackUsesAppName(t *testing.T) {
	t.Setenv(HomeEnv, "")
	assert.Equal(t, AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, AppName, filepath.Base(StateDir()))
}
