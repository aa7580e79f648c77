package command

import (
	"context"
	"testing"
	"time"

	"github.com/grovetools/leader/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute app bundle", "/Applications/Safari.app", false},
		{"absolute with spaces", "/Users/me/My Folder", false},
		{"empty", "", true},
		{"relative", "Documents", true},
		{"flag-like", "-a", true},
		{"nul byte", "/tmp/a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path?q=1", false},
		{"custom scheme", "slack://open", false},
		{"mailto", "mailto:someone@example.com", false},
		{"no scheme", "example.com", true},
		{"http without host", "http://", true},
		{"whitespace", "https://exa mple.com", true},
		{"flag-like", "--help", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "open", "-a", "/Applications/Safari.app")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.String() != "open -a /Applications/Safari.app" {
			t.Errorf("unexpected command line %q", cmd.String())
		}
		if cmd.timeout != DefaultOpenTimeout {
			t.Errorf("expected default timeout %v, got %v", DefaultOpenTimeout, cmd.timeout)
		}
	})

	t.Run("empty command name", func(t *testing.T) {
		if _, err := sb.Build(ctx, ""); err == nil {
			t.Error("expected error for empty command name")
		}
	})

	t.Run("nul in argument", func(t *testing.T) {
		if _, err := sb.Build(ctx, "open", "a\x00b"); err == nil {
			t.Error("expected error for NUL argument")
		}
	})
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	if err := sb.Validate("url", "https://example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := sb.Validate("path", "relative/path"); err == nil {
		t.Error("expected error for relative path")
	}
	if err := sb.Validate("unknownType", "value"); err == nil {
		t.Error("expected error for unknown validator type")
	}
}

func TestCommand_WithTimeout(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "sleep", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmd = cmd.WithTimeout(time.Second)
	if cmd.timeout != time.Second {
		t.Errorf("expected timeout %v, got %v", time.Second, cmd.timeout)
	}

	cmd = cmd.WithTimeout(20 * time.Minute)
	if cmd.timeout != MaxTimeout {
		t.Errorf("expected timeout to be capped at %v, got %v", MaxTimeout, cmd.timeout)
	}
}

func TestCommand_RunTimeout(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "sleep", "10")
	if err != nil {
		t.Fatal(err)
	}
	cmd = cmd.WithTimeout(100 * time.Millisecond)

	start := time.Now()
	_, err = cmd.Run()
	if !errors.Is(err, errors.ErrCodeCommandTimeout) {
		t.Errorf("expected COMMAND_TIMEOUT, got %v", err)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Errorf("command took too long to time out: %v", d)
	}
}

func TestCommand_RunFailure(t *testing.T) {
	cmd, err := NewSafeBuilder().Build(context.Background(), "/bin/sh", "-c", "echo nope >&2; exit 3")
	if err != nil {
		t.Fatal(err)
	}
	out, err := cmd.Run()
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Fatalf("expected COMMAND_FAILED, got %v", err)
	}
	if string(out) != "nope\n" {
		t.Errorf("expected stderr in output, got %q", out)
	}
	le, _ := errors.As(err)
	if le.Details["exitCode"] != 3 {
		t.Errorf("expected exit code 3 in details, got %v", le.Details["exitCode"])
	}
}

func TestSafeBuilder_Detach(t *testing.T) {
	sb := NewSafeBuilder()
	if err := sb.Detach("/bin/sh", "-c", "exit 0"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := sb.Detach("/nonexistent/binary")
	if !errors.Is(err, errors.ErrCodeLaunchFailed) {
		t.Errorf("expected LAUNCH_FAILED, got %v", err)
	}
}
