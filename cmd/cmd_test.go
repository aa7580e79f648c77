package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/pkg/action"
	"github.com/grovetools/leader/pkg/daemon"
	"github.com/grovetools/leader/pkg/sequence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every leader path at a fresh directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("LEADER_HOME", home)
	t.Setenv("LEADER_CONFIG", "")
	t.Setenv("LEADER_LOG_LEVEL", "error")
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitValidateAndTable(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote starter config")
	assert.FileExists(t, filepath.Join(home, "config", "config.yml"))

	_, err = run(t, "init")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "refuses to overwrite without --force")

	_, err = run(t, "init", "--force")
	require.NoError(t, err)

	out, err = run(t, "validate", "--json")
	require.NoError(t, err)
	var res validateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 4, res.Entries)
	assert.Empty(t, res.Diagnostics)

	out, err = run(t, "table", "--local", "--json")
	require.NoError(t, err)
	var tbl daemon.Table
	require.NoError(t, json.Unmarshal([]byte(out), &tbl))
	var seqs []string
	for _, e := range tbl.Entries {
		seqs = append(seqs, e.Sequence)
	}
	assert.Equal(t, []string{"og", "oh", "su", "t"}, seqs)

	out, err = run(t, "table", "O", "--local")
	require.NoError(t, err)
	assert.Contains(t, out, "GitHub")
	assert.NotContains(t, out, "Terminal")
}

func TestTableFallsBackWithoutDaemon(t *testing.T) {
	isolate(t)
	_, err := run(t, "init")
	require.NoError(t, err)

	out, err := run(t, "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "config.yml", "source is the config file")
}

func TestValidateReportsErrors(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("leader:\n  timeout: 1s\n  settle_delay: 2s\n"), 0o644))

	_, err := run(t, "validate", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))

	_, err = run(t, "validate", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestControlCommandsNeedDaemon(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{{"activate"}, {"key", "o"}, {"end"}, {"status"}, {"events"}, {"daemon", "reload"}} {
		_, err := run(t, args...)
		require.Error(t, err, args)
		assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning), args)
	}

	_, err := run(t, "daemon", "status")
	assert.True(t, errors.Is(err, errors.ErrCodeDaemonNotRunning))
}

func TestSchemaAndPaths(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "schema")
	require.NoError(t, err)
	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))

	out, err = run(t, "paths", "--json")
	require.NoError(t, err)
	var p PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, filepath.Join(home, "config", "config.yml"), p.ConfigFile)
	assert.Equal(t, filepath.Join(home, "run", "leaderd.sock"), p.Socket)
	assert.True(t, strings.HasPrefix(p.LogFile, filepath.Join(home, "state", "logs")))
}

func TestReadLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leader.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\npartial"), 0o644))

	lines, offset, err := readLastLines(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "three"}, lines)
	assert.Equal(t, int64(len("one\ntwo\nthree\n")), offset, "a trailing partial line is left for the follower")

	lines, _, err = readLastLines(path, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, lines)

	lines, _, err = readLastLines(path, 0)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestLatestLogFile(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "leader-2024-01-01.log")
	empty := filepath.Join(dir, "leader-2024-01-02.log")
	require.NoError(t, os.WriteFile(old, []byte("line\n"), 0o644))
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := latestLogFile(dir)
	require.NoError(t, err)
	assert.Equal(t, old, got, "non-empty files win over newer empty ones")

	_, err = latestLogFile(t.TempDir())
	assert.Error(t, err)
}

func TestResolveLogFile(t *testing.T) {
	home := isolate(t)
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	path, err := resolveLogFile("", now)
	assert.Error(t, err)
	assert.Equal(t, filepath.Join(home, "state", "logs", "leader-2026-03-04.log"), path)

	logDir := filepath.Join(home, "state", "logs")
	require.NoError(t, os.MkdirAll(logDir, 0o755))
	older := filepath.Join(logDir, "leader-2026-03-01.log")
	require.NoError(t, os.WriteFile(older, []byte("x\n"), 0o644))

	path, err = resolveLogFile("", now)
	require.NoError(t, err)
	assert.Equal(t, older, path)
}

func TestFilterPrefix(t *testing.T) {
	tbl := sequence.NewTable(map[string]action.Descriptor{
		"oa": {Kind: action.KindURL, Value: "a"},
		"ob": {Kind: action.KindURL, Value: "b"},
		"t":  {Kind: action.KindCommand, Value: "true"},
	})
	got := filterPrefix(tbl.Entries(), "O")
	require.Len(t, got, 2)
	assert.Equal(t, "oa", got[0].Sequence)
	assert.Len(t, tbl.Entries(), 3, "the input slice is not modified")
}
