package cli

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/grovetools/leader/errors"
	"github.com/grovetools/leader/tui/theme"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", got)
	assert.Equal(t, "short\nlines", wrapText("short\nlines", 40))
}

func TestParseDescription(t *testing.T) {
	desc, ex := parseDescription("Does things.\nExamples:\n  leader key s")
	assert.Equal(t, "Does things.", desc)
	assert.Equal(t, "leader key s", ex)

	desc, ex = parseDescription("No examples here.")
	assert.Equal(t, "No examples here.", desc)
	assert.Empty(t, ex)
}

func TestRenderHelp(t *testing.T) {
	root := NewStandardCommand("leader", "Leader-key command dispatcher")
	root.AddCommand(&cobra.Command{Use: "key <char>", Short: "Type a key", Run: func(*cobra.Command, []string) {}})

	var buf bytes.Buffer
	renderHelp(&buf, root, theme.New("terminal"), 60)
	out := buf.String()

	assert.Contains(t, out, "LEADER")
	assert.Contains(t, out, "COMMANDS")
	assert.Contains(t, out, "key")
	assert.Contains(t, out, "--verbose")
	assert.Contains(t, out, "--config")
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"config not found", errors.ConfigNotFound("/x/config.yml"), []string{"/x/config.yml", "leader init"}},
		{"config invalid", errors.New(errors.ErrCodeConfigValidation, "bad").WithDetail("path", "/x/c.yml"), []string{"Invalid configuration", "bad", "/x/c.yml"}},
		{"daemon down", errors.DaemonNotRunning("/run/leaderd.sock"), []string{"not running", "leader daemon start"}},
		{"daemon up", errors.DaemonRunning(42), []string{"PID 42", "leader daemon stop"}},
		{"plain", stderrors.New("boom"), []string{"boom", "leader --help"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{Use: "leader"}
			err := NewErrorHandler(false).WithWriter(&buf).Handle(cmd, tt.err)
			assert.Equal(t, tt.err, err)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
			assert.NotContains(t, buf.String(), "Error details")
		})
	}
}

func TestErrorHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewErrorHandler(true).WithWriter(&buf).Handle(nil, errors.InvalidInput("nope"))
	assert.Contains(t, buf.String(), `"code": "INVALID_INPUT"`)
}

func TestExecuteReturnsExitCode(t *testing.T) {
	root := NewStandardCommand("leader", "test")
	var errOut bytes.Buffer
	root.SetErr(&errOut)
	root.SetArgs([]string{"fail"})
	root.AddCommand(&cobra.Command{
		Use:  "fail",
		RunE: func(*cobra.Command, []string) error { return errors.InvalidInput("bad argument") },
	})

	assert.Equal(t, 1, Execute(root))
	assert.Contains(t, errOut.String(), "bad argument")

	root.SetArgs([]string{"version", "--json"})
	root.AddCommand(NewVersionCommand())
	var out bytes.Buffer
	root.SetOut(&out)
	require.Equal(t, 0, Execute(root))
	assert.True(t, strings.Contains(out.String(), `"version"`))
}
