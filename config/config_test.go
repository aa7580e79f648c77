package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: "1"
leader:
  timeout: 3s
  settle_delay: 250ms
notifications:
  on_success: true
actions:
  - key: t
    type: application
    value: /Applications/Terminal.app
  - key: Open
    actions:
      - key: s
        type: url
        value: https://example.com
        label: Example
`

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(sampleYAML), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Leader.Timeout.D())
	assert.Equal(t, 250*time.Millisecond, cfg.Leader.SettleDelay.D())
	assert.Equal(t, DefaultCommandTimeout, cfg.Leader.CommandTimeout.D(), "unset values get defaults")
	assert.Equal(t, DefaultShell, cfg.Leader.Shell)
	assert.True(t, cfg.NotificationsEnabled())
	assert.True(t, cfg.Notifications.OnSuccess)

	require.Len(t, cfg.Actions, 2)
	assert.Equal(t, NodeGroup, cfg.Actions[1].EffectiveType())
	assert.Equal(t, "Example", cfg.Actions[1].Actions[0].Label)
}

func TestLoadTOML(t *testing.T) {
	data := `
[leader]
timeout = "2s"

[notifications]
enabled = false

[[actions]]
key = "c"
type = "command"
value = "make build"

[[actions]]
key = "g"
label = "Go"

[[actions.actions]]
key = "h"
type = "folder"
value = "~/src"
`
	cfg, err := LoadFromBytes([]byte(data), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Leader.Timeout.D())
	assert.False(t, cfg.NotificationsEnabled())
	require.Len(t, cfg.Actions, 2)
	assert.Equal(t, "~/src", cfg.Actions[1].Actions[0].Value)
}

func TestLoadJSON(t *testing.T) {
	data := `{"leader": {"timeout": "4s"}, "actions": [{"key": "u", "type": "url", "value": "https://go.dev"}]}`
	cfg, err := LoadFromBytes([]byte(data), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, cfg.Leader.Timeout.D())
	assert.Len(t, cfg.Actions, 1)
}

func TestLoadEmptyDocument(t *testing.T) {
	cfg, err := LoadFromBytes(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, cfg.Leader.Timeout.D())
	assert.Empty(t, cfg.Actions)
	assert.Equal(t, DefaultLeaderKey, cfg.TTY.LeaderKey)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.ErrorCode
	}{
		{"syntax", "leader: [", errors.ErrCodeConfigInvalid},
		{"unknown key", "leadr:\n  timeout: 1s\n", errors.ErrCodeConfigValidation},
		{"bad duration", "leader:\n  timeout: soon\n", errors.ErrCodeConfigValidation},
		{"bad type", "actions:\n  - key: x\n    type: script\n    value: y\n", errors.ErrCodeConfigValidation},
		{"action without value", "actions:\n  - key: x\n    type: url\n", errors.ErrCodeConfigValidation},
		{"settle not shorter", "leader:\n  timeout: 1s\n  settle_delay: 2s\n", errors.ErrCodeConfigValidation},
		{"top level list", "- a\n- b\n", errors.ErrCodeConfigInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "error: %v", err)
		})
	}
}

func TestEmptyKeyIsNotAValidationError(t *testing.T) {
	cfg, err := LoadFromBytes([]byte("actions:\n  - key: \"\"\n    type: url\n    value: https://x.dev\n"), FormatYAML)
	require.NoError(t, err)
	assert.Len(t, cfg.Actions, 1)
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("LEADER_TEST_URL", "https://from-env.dev")
	data := "actions:\n  - key: a\n    type: url\n    value: ${LEADER_TEST_URL}\n  - key: b\n    type: command\n    value: ${LEADER_TEST_UNSET:-echo fallback}\n"

	cfg, err := LoadFromBytes([]byte(data), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.dev", cfg.Actions[0].Value)
	assert.Equal(t, "echo fallback", cfg.Actions[1].Value)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[leader]\ntimeout = \"7s\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Leader.Timeout.D())

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("leader: [\n"), 0644))
	_, err = Load(bad)
	le, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, bad, le.Details["path"])
}

func TestLocate(t *testing.T) {
	home := t.TempDir()
	t.Setenv(paths.HomeEnv, home)
	t.Setenv(EnvConfig, "")

	_, err := Locate("")
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))

	require.NoError(t, os.MkdirAll(paths.ConfigDir(), 0755))
	tomlPath := filepath.Join(paths.ConfigDir(), "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, nil, 0644))
	got, err := Locate("")
	require.NoError(t, err)
	assert.Equal(t, tomlPath, got)

	ymlPath := filepath.Join(paths.ConfigDir(), "config.yml")
	require.NoError(t, os.WriteFile(ymlPath, nil, 0644))
	got, _ = Locate("")
	assert.Equal(t, ymlPath, got, "config.yml is preferred")

	t.Setenv(EnvConfig, "/etc/leader.yml")
	got, _ = Locate("")
	assert.Equal(t, "/etc/leader.yml", got)

	got, _ = Locate("/explicit.yml")
	assert.Equal(t, "/explicit.yml", got)

	userHome, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = Locate("~/leader.yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userHome, "leader.yml"), got)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatFor("/x/config.TOML"))
	assert.Equal(t, FormatJSON, FormatFor("config.json"))
	assert.Equal(t, FormatYAML, FormatFor("config.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("config"))
}

func TestSampleIsValid(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(Sample), FormatYAML)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Tree())
}

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	s := string(data)
	for _, want := range []string{`"leader"`, `"settle_delay"`, `"actions"`, `"additionalProperties": false`, `"pattern"`} {
		assert.True(t, strings.Contains(s, want), "schema should contain %s", want)
	}
}
